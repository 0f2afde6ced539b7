package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/leonardcser/dict-mcp/internal/dictionary"
	"github.com/leonardcser/dict-mcp/internal/logger"
)

// MaxRequestSize bounds one request line. A longer line closes the
// connection.
const MaxRequestSize = 1 << 20

// Serve accepts connections on l and answers requests with backend until
// ctx is done. It closes l and waits for open connections before returning.
func Serve(ctx context.Context, l net.Listener, backend dictionary.Backend) error {
	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Warnf("daemon: accept: %v", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			handleConn(ctx, conn, backend)
		}()
	}
}

func handleConn(ctx context.Context, conn net.Conn, backend dictionary.Backend) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), MaxRequestSize)
	enc := json.NewEncoder(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warnf("daemon: decoding request: %v", err)
			return
		}
		if err := enc.Encode(dispatch(ctx, backend, req)); err != nil {
			logger.Warnf("daemon: writing response: %v", err)
			return
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		logger.Warnf("daemon: reading request: %v", err)
	}
}

func dispatch(ctx context.Context, backend dictionary.Backend, req Request) Response {
	var (
		resp = Response{OK: true}
		err  error
	)
	switch req.Op {
	case OpPing:
	case OpSave:
		err = backend.SaveTranslation(ctx, req.Document, req.pair(), req.Original, req.Translated)
	case OpProject:
		resp.Suggestions, err = backend.ProjectSuggestions(ctx, req.Document, req.pair(), req.Original)
	case OpGlobal:
		resp.Suggestions, err = backend.GlobalSuggestions(ctx, req.pair(), req.Original)
	case OpProjects:
		resp.Projects, err = backend.Projects(ctx, req.pair())
	default:
		err = ErrUnknownOp
	}
	if err != nil {
		logger.Error(ctx, err)
		return Response{OK: false, Error: err.Error(), Code: errorCode(err)}
	}
	return resp
}
