package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/llm"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"vocab", "exercise"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"vocab_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"vocab_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"vocab_update": {
		def:     updateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"vocab_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"vocab_favorite": {
		def:     favoriteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFavorite },
	},
	"vocab_record": {
		def:     recordToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecord },
	},
	"vocab_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"vocab_categories": {
		def:     categoriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategories },
	},
	"vocab_stats": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"vocab_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"vocab_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"vocab_import_sheet": {
		def:     importSheetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImportSheet },
	},
	"vocab_export_sheet": {
		def:     exportSheetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportSheet },
	},
	"exercise_generate": {
		def:     generateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"exercise_submit": {
		def:     submitToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSubmit },
	},
	"exercise_retry": {
		def:     retryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRetry },
	},
	"exercise_fetch": {
		def:     exerciseFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExerciseFetch },
	},
	"exercise_list": {
		def:     exerciseListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExerciseList },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "vocab_add" → "vocab").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with the lingo tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration. client may be nil, in which case
// exercise_generate reports LLM_UNAVAILABLE.
func NewServer(db *sql.DB, cfg *config.Config, client llm.Client, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"lingo",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, client)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, client llm.Client, version string) error {
	s := NewServer(db, cfg, client, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
