package daemon

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"go.trai.ch/zerr"

	"github.com/leonardcser/dict-mcp/internal/dictionary"
)

const (
	// DefaultDialTimeout bounds connecting to the daemon socket.
	DefaultDialTimeout = 500 * time.Millisecond
	// DefaultCallTimeout bounds a whole request when ctx has no deadline.
	DefaultCallTimeout = 30 * time.Second
)

// Client implements dictionary.Backend over a Unix socket. Every call uses a
// fresh connection.
type Client struct {
	socketPath  string
	dialTimeout time.Duration
	callTimeout time.Duration
}

var _ dictionary.Backend = (*Client)(nil)

func NewClient(socketPath string) *Client {
	return &Client{
		socketPath:  socketPath,
		dialTimeout: DefaultDialTimeout,
		callTimeout: DefaultCallTimeout,
	}
}

func (c *Client) withConn(ctx context.Context, fn func(conn net.Conn) error) error {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "connecting to dictionary daemon"), "socket", c.socketPath)
	}
	defer conn.Close()
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.callTimeout)
	}
	_ = conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()
	return fn(conn)
}

func (c *Client) call(ctx context.Context, req Request) (Response, error) {
	var resp Response
	err := c.withConn(ctx, func(conn net.Conn) error {
		if err := json.NewEncoder(conn).Encode(&req); err != nil {
			return err
		}
		return json.NewDecoder(conn).Decode(&resp)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, ctxErr
		}
		return Response{}, zerr.With(err, "op", req.Op)
	}
	if !resp.OK {
		return Response{}, &RemoteError{Code: resp.Code, Message: resp.Error}
	}
	return resp, nil
}

// Ping checks that the daemon is up and answering.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, Request{Op: OpPing})
	return err
}

func (c *Client) SaveTranslation(ctx context.Context, document string, pair dictionary.LanguagePair, original, translated string) error {
	_, err := c.call(ctx, Request{
		Op:         OpSave,
		Document:   document,
		Source:     string(pair.Source),
		Target:     string(pair.Target),
		Original:   original,
		Translated: translated,
	})
	return err
}

func (c *Client) ProjectSuggestions(ctx context.Context, document string, pair dictionary.LanguagePair, original string) ([]dictionary.Suggestion, error) {
	resp, err := c.call(ctx, Request{
		Op:       OpProject,
		Document: document,
		Source:   string(pair.Source),
		Target:   string(pair.Target),
		Original: original,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Suggestions), nil
}

func (c *Client) GlobalSuggestions(ctx context.Context, pair dictionary.LanguagePair, original string) ([]dictionary.Suggestion, error) {
	resp, err := c.call(ctx, Request{
		Op:       OpGlobal,
		Source:   string(pair.Source),
		Target:   string(pair.Target),
		Original: original,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Suggestions), nil
}

func (c *Client) Projects(ctx context.Context, pair dictionary.LanguagePair) ([]string, error) {
	resp, err := c.call(ctx, Request{
		Op:     OpProjects,
		Source: string(pair.Source),
		Target: string(pair.Target),
	})
	if err != nil {
		return nil, err
	}
	if resp.Projects == nil {
		return []string{}, nil
	}
	return resp.Projects, nil
}

func nonNil(s []dictionary.Suggestion) []dictionary.Suggestion {
	if s == nil {
		return []dictionary.Suggestion{}
	}
	return s
}
