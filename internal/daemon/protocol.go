// Package daemon serves a dictionary.Backend over a Unix domain socket so a
// single process owns the dictionary files, and provides the matching client.
package daemon

import (
	"errors"

	"go.trai.ch/zerr"

	"github.com/leonardcser/dict-mcp/internal/cache"
	"github.com/leonardcser/dict-mcp/internal/dictionary"
)

// Newline-delimited JSON: every Request on a connection gets exactly one
// Response, in order.

// Operations.
const (
	OpPing     = "ping"
	OpSave     = "save"
	OpProject  = "project"
	OpGlobal   = "global"
	OpProjects = "projects"
)

type Request struct {
	Op         string `json:"op"`
	Document   string `json:"document,omitempty"`
	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
	Original   string `json:"original,omitempty"`
	Translated string `json:"translated,omitempty"`
}

func (r Request) pair() dictionary.LanguagePair {
	return dictionary.Pair(dictionary.Language(r.Source), dictionary.Language(r.Target))
}

type Response struct {
	OK          bool                    `json:"ok"`
	Error       string                  `json:"error,omitempty"`
	Code        string                  `json:"code,omitempty"`
	Suggestions []dictionary.Suggestion `json:"suggestions,omitempty"`
	Projects    []string                `json:"projects,omitempty"`
}

// Error codes let clients match remote failures with errors.Is.
var codes = []struct {
	code string
	err  error
}{
	{"invalid_language", dictionary.ErrInvalidLanguage},
	{"invalid_document", dictionary.ErrInvalidDocument},
	{"invalid_address", dictionary.ErrInvalidAddress},
	{"open", cache.ErrOpen},
	{"codec", cache.ErrCodec},
	{"io", cache.ErrIO},
	{"closed", cache.ErrClosed},
	{"unknown_op", ErrUnknownOp},
}

// ErrUnknownOp is returned for requests with an unsupported Op.
var ErrUnknownOp = zerr.New("unknown op")

func errorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// RemoteError is a failure reported by the daemon. It unwraps to the
// matching sentinel when the daemon sent a known code.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error {
	for _, c := range codes {
		if c.code == e.Code {
			return c.err
		}
	}
	return nil
}
