// Package logging builds the process logger: log/slog on top of a
// charmbracelet/log handler.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldCode      = "code"
	FieldFood      = "food"
	FieldItems     = "items"
	FieldSkipped   = "skipped"
	FieldDate      = "date"
	FieldKind      = "kind"
	FieldJob       = "job"
	FieldAddr      = "addr"
	FieldBackend   = "backend"
	FieldPath      = "path"
	FieldCount     = "count"
	FieldSchema    = "schema_version"
)

// Component names
const (
	ComponentApp      = "app"
	ComponentOps      = "ops"
	ComponentMCP      = "mcp"
	ComponentWeb      = "web"
	ComponentSchedule = "schedule"
	ComponentNotify   = "notify"
	ComponentStorage  = "storage"
)

// New returns a logger writing to w at level ("debug", "info", "warn",
// "error"). An unknown level falls back to info.
func New(w io.Writer, level string) *slog.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "nutri",
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component returns logger tagged with a component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With(FieldComponent, name)
}
