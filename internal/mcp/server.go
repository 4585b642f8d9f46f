package mcp

import (
	"context"
	"io"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/nutri/internal/config"
	"github.com/hpungsan/nutri/internal/notify"
	"github.com/hpungsan/nutri/internal/ops"
)

// ReminderMethod is the notification method used to push reminders.
const ReminderMethod = "notifications/nutri/reminder"

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"food_log": {
		def:     logToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLog },
	},
	"food_quick_add": {
		def:     quickAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleQuickAdd },
	},
	"food_undo": {
		def:     undoToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUndo },
	},
	"food_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"food_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
	"food_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"food_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"food_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"food_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"food_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
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

// NewServer creates a new MCP server with the food tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(svc *ops.Service, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"nutri",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(svc)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
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

// Serve runs the server over the given stdio streams until ctx is done or
// the input is closed.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

// Notifier pushes reminders to every connected MCP client.
type Notifier struct {
	s *server.MCPServer
}

// NewNotifier creates a notifier on s.
func NewNotifier(s *server.MCPServer) *Notifier {
	return &Notifier{s: s}
}

// Notify implements notify.Notifier.
func (n *Notifier) Notify(_ context.Context, msg notify.Message) error {
	n.s.SendNotificationToAllClients(ReminderMethod, map[string]any{
		"kind": msg.Kind,
		"date": msg.Date,
		"text": msg.Text,
		"sent": msg.Sent,
	})
	return nil
}
