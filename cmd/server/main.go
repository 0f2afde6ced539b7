package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leonardcser/dict-mcp/internal/config"
	"github.com/leonardcser/dict-mcp/internal/daemon"
	"github.com/leonardcser/dict-mcp/internal/logger"
	tools "github.com/leonardcser/dict-mcp/internal/tools"
)

const daemonBinary = "dict-daemon"

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Infof("Starting Dictionary MCP server")

	cfg, err := config.Load()
	if err != nil {
		logger.Error(context.Background(), err)
		panic(err)
	}

	// Connect to the dictionary daemon; start it if needed, then connect.
	logger.Infof("Attempting to connect to dictionary daemon at %s", cfg.SocketPath)
	client, err := connectDaemon(cfg.SocketPath)
	if err != nil {
		logger.Warnf("Failed to connect to dictionary daemon: %v, attempting to start daemon", err)
		if startErr := startDaemon(); startErr != nil {
			logger.Errorf("Failed to start dictionary daemon: %v", startErr)
		} else {
			logger.Infof("Dictionary daemon started successfully")
		}
		client, err = waitForDaemon(cfg.SocketPath)
		if err != nil {
			logger.Errorf("Failed to connect to dictionary daemon after startup attempt: %v", err)
			panic(err)
		}
	}
	logger.Infof("Successfully connected to dictionary daemon")

	s := server.NewMCPServer(
		"Dictionary MCP",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)
	logger.Infof("Created MCP server instance")

	toolSave := mcp.NewTool("dictionary-save",
		mcp.WithDescription(multiline(
			"Saves an accepted translation to the project dictionary of a document",
			"\nFunctionality:",
			"- Appends the translation to the ones already stored for the text",
			"- Creates the project dictionary on first use",
			"\nUsage notes:",
			"- Languages are short tags such as EN or PL; use '_' for regional variants (en_US)",
			"- Documents sharing a path share a project dictionary",
		)),
		mcp.WithString("document", mcp.Required(), mcp.Description("Path of the document being translated")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source language tag")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target language tag")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Original text")),
		mcp.WithString("translation", mcp.Required(), mcp.Description("Accepted translation")),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(toolSave, tools.DictionarySaveHandler(client))
	logger.Infof("Registered dictionary-save tool")

	toolSuggest := mcp.NewTool("dictionary-suggest",
		mcp.WithDescription(multiline(
			"Returns the translations saved for a text in the document's project dictionary",
			"\nUsage notes:",
			"- Suggestions are listed oldest first and may repeat",
			"- This tool is read-only and never creates a dictionary",
		)),
		mcp.WithString("document", mcp.Required(), mcp.Description("Path of the document being translated")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source language tag")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target language tag")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to look up")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(toolSuggest, tools.DictionarySuggestHandler(client))
	logger.Infof("Registered dictionary-suggest tool")

	toolGlobal := mcp.NewTool("dictionary-global-suggest",
		mcp.WithDescription(multiline(
			"Returns the translations saved for a text in every project of a language pair",
			"\nUsage notes:",
			"- Each distinct translation is listed once",
			"- Projects whose dictionary cannot be opened are skipped",
			"- This tool is read-only",
		)),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source language tag")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target language tag")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to look up")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(toolGlobal, tools.DictionaryGlobalSuggestHandler(client))
	logger.Infof("Registered dictionary-global-suggest tool")

	toolProjects := mcp.NewTool("dictionary-projects",
		mcp.WithDescription("Lists the projects that have a dictionary for a language pair"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source language tag")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target language tag")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(toolProjects, tools.DictionaryProjectsHandler(client))
	logger.Infof("Registered dictionary-projects tool")

	logger.Infof("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }

func connectDaemon(sock string) (*daemon.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	client := daemon.NewClient(sock)
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// waitForDaemon polls the socket until the daemon answers, for about five
// seconds.
func waitForDaemon(sock string) (*daemon.Client, error) {
	var client *daemon.Client
	err := retry.Do(func() error {
		c, err := connectDaemon(sock)
		if err != nil {
			return err
		}
		client = c
		return nil
	},
		retry.Attempts(25),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debugf("daemon not ready (attempt %d): %v", n+1, err)
		}),
	)
	return client, err
}

func startDaemon() error {
	// 1) Try daemon binary next to this server executable
	if exePath, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exePath), daemonBinary)
		if _, statErr := os.Stat(sibling); statErr == nil {
			return spawn(sibling)
		}
	}

	// 2) Try PATH binary
	if path, err := exec.LookPath(daemonBinary); err == nil {
		return spawn(path)
	}

	// 3) Try local binary in current working directory
	if _, err := os.Stat("./" + daemonBinary); err == nil {
		return spawn("./" + daemonBinary)
	}

	return exec.ErrNotFound
}

func spawn(path string) error {
	cmd := exec.Command(path)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Env = os.Environ()
	return cmd.Start()
}
