package daemon_test

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/dict-mcp/internal/daemon"
	"github.com/leonardcser/dict-mcp/internal/dictionary"
)

var enpl = dictionary.Pair("EN", "PL")

// startDaemon serves a fresh dictionary service on a socket in a short
// temporary directory; Unix socket paths are length limited.
func startDaemon(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "dmcp")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "d.sock")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)

	svc := dictionary.NewService(dictionary.Options{Layout: dictionary.Layout{Root: filepath.Join(dir, "dicts")}})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Serve(ctx, l, svc) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
		_ = svc.Close()
	})
	return sock
}

func TestClient_RoundTrip(t *testing.T) {
	t.Parallel()
	c := daemon.NewClient(startDaemon(t))
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.SaveTranslation(ctx, "/a.odt", enpl, "cat", "kot"))
	require.NoError(t, c.SaveTranslation(ctx, "/b.odt", enpl, "cat", "kot"))
	require.NoError(t, c.SaveTranslation(ctx, "/b.odt", enpl, "cat", "kotek"))

	project, err := c.ProjectSuggestions(ctx, "/b.odt", enpl, "cat")
	require.NoError(t, err)
	assert.Equal(t, []dictionary.Suggestion{
		{OriginalText: "cat", TranslatedText: "kot", MatchType: dictionary.Exact},
		{OriginalText: "cat", TranslatedText: "kotek", MatchType: dictionary.Exact},
	}, project)

	global, err := c.GlobalSuggestions(ctx, enpl, "cat")
	require.NoError(t, err)
	require.Len(t, global, 2)
	assert.Equal(t, "kot", global[0].TranslatedText)
	assert.Equal(t, "kotek", global[1].TranslatedText)

	projects, err := c.Projects(ctx, enpl)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.odt", "b.odt"}, projects)
}

func TestClient_EmptyResultsAreNotNil(t *testing.T) {
	t.Parallel()
	c := daemon.NewClient(startDaemon(t))
	ctx := context.Background()

	got, err := c.ProjectSuggestions(ctx, "/none.odt", enpl, "cat")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	projects, err := c.Projects(ctx, enpl)
	require.NoError(t, err)
	assert.NotNil(t, projects)
}

func TestClient_RemoteErrorsKeepTheirKind(t *testing.T) {
	t.Parallel()
	c := daemon.NewClient(startDaemon(t))
	ctx := context.Background()

	err := c.SaveTranslation(ctx, "/a.odt", dictionary.Pair("en-US", "pl"), "a", "b")
	require.ErrorIs(t, err, dictionary.ErrInvalidLanguage)
	var remote *daemon.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "invalid_language", remote.Code)

	err = c.SaveTranslation(ctx, "", enpl, "a", "b")
	require.ErrorIs(t, err, dictionary.ErrInvalidDocument)
}

func TestServer_UnknownOpAndPipelining(t *testing.T) {
	t.Parallel()
	sock := startDaemon(t)

	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)
	require.NoError(t, enc.Encode(daemon.Request{Op: "explode"}))
	require.NoError(t, enc.Encode(daemon.Request{Op: daemon.OpPing}))

	var first, second daemon.Response
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.False(t, first.OK)
	assert.Equal(t, "unknown_op", first.Code)
	assert.True(t, second.OK)
}

func TestServer_OversizedRequestClosesConnection(t *testing.T) {
	t.Parallel()
	sock := startDaemon(t)

	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	huge := strings.Repeat("a", daemon.MaxRequestSize+1)
	go func() {
		_ = json.NewEncoder(conn).Encode(daemon.Request{Op: daemon.OpSave, Original: huge})
	}()

	var resp daemon.Response
	err = json.NewDecoder(conn).Decode(&resp)
	require.Error(t, err, "no response is written for an oversized request")
	assert.NotErrorIs(t, err, os.ErrDeadlineExceeded)

	// the daemon keeps serving other clients
	require.NoError(t, daemon.NewClient(sock).Ping(context.Background()))
}

func TestClient_NoDaemon(t *testing.T) {
	t.Parallel()
	c := daemon.NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	require.Error(t, c.Ping(context.Background()))
}

func TestRemoteError_UnknownCode(t *testing.T) {
	err := &daemon.RemoteError{Code: "mystery", Message: "boom"}
	assert.Equal(t, "boom", err.Error())
	assert.Nil(t, err.Unwrap())
}
