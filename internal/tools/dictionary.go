package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/dict-mcp/internal/dictionary"
)

// Handler is the signature mcp-go expects for tool handlers.
type Handler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// DictionarySaveHandler returns the MCP tool handler for the "dictionary-save" tool.
func DictionarySaveHandler(d dictionary.Backend) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc, err := req.RequireString("document")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pair, err := requirePair(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tr, err := req.RequireString("translation")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := d.SaveTranslation(ctx, doc, pair, text, tr); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Saved %q -> %q (%s)", text, tr, pair)), nil
	}
}

// DictionarySuggestHandler returns the MCP tool handler for the "dictionary-suggest" tool.
func DictionarySuggestHandler(d dictionary.Backend) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc, err := req.RequireString("document")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pair, err := requirePair(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s, err := d.ProjectSuggestions(ctx, doc, pair, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatSuggestions(s)), nil
	}
}

// DictionaryGlobalSuggestHandler returns the MCP tool handler for the
// "dictionary-global-suggest" tool.
func DictionaryGlobalSuggestHandler(d dictionary.Backend) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pair, err := requirePair(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s, err := d.GlobalSuggestions(ctx, pair, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatSuggestions(s)), nil
	}
}

// DictionaryProjectsHandler returns the MCP tool handler for the "dictionary-projects" tool.
func DictionaryProjectsHandler(d dictionary.Backend) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pair, err := requirePair(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		projects, err := d.Projects(ctx, pair)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(projects) == 0 {
			return mcp.NewToolResultText("No projects."), nil
		}
		return mcp.NewToolResultText(strings.Join(projects, "\n")), nil
	}
}

func requirePair(req mcp.CallToolRequest) (dictionary.LanguagePair, error) {
	src, err := req.RequireString("source")
	if err != nil {
		return dictionary.LanguagePair{}, err
	}
	dst, err := req.RequireString("target")
	if err != nil {
		return dictionary.LanguagePair{}, err
	}
	pair := dictionary.Pair(dictionary.Language(src), dictionary.Language(dst))
	return pair, pair.Validate()
}

// formatSuggestions renders an ordered list, one translation per entry.
func formatSuggestions(s []dictionary.Suggestion) string {
	if len(s) == 0 {
		return "No suggestions."
	}
	var sb strings.Builder
	for i, x := range s {
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s [%s]", i+1, x.TranslatedText, x.OriginalText, x.MatchType))
		if i < len(s)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
