package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is the canonical record of one reportable occurrence. It is built
// by the normalizer (or produced by the capture engine) and never mutated
// by this layer after it has been returned to the caller.
type Event struct {
	EventID     string            `json:"event_id,omitempty"`
	Timestamp   time.Time         `json:"timestamp,omitempty"`
	Platform    string            `json:"platform,omitempty"`
	Logger      string            `json:"logger,omitempty"`
	Level       string            `json:"level,omitempty"`
	Message     string            `json:"message,omitempty"`
	Fingerprint []string          `json:"fingerprint,omitempty"`
	Exception   *Exception        `json:"exception,omitempty"`
	Stacktrace  *Stacktrace       `json:"stacktrace,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Extra       map[string]any    `json:"extra,omitempty"`
}

// Exception describes a captured error: its type name, rendered value,
// frames, and how it was captured.
type Exception struct {
	Type       string      `json:"type,omitempty"`
	Value      string      `json:"value,omitempty"`
	Stacktrace *Stacktrace `json:"stacktrace,omitempty"`
	Mechanism  *Mechanism  `json:"mechanism,omitempty"`
}

// Mechanism tags an exception descriptor with how it was captured.
type Mechanism struct {
	Handled bool   `json:"handled"`
	Type    string `json:"type,omitempty"`
}

// Stacktrace is an ordered frame list, oldest call first.
type Stacktrace struct {
	Frames []StackFrame `json:"frames,omitempty"`
}

// StackFrame is one entry of a stack trace.
type StackFrame struct {
	Function    string   `json:"function,omitempty"`
	Module      string   `json:"module,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	AbsPath     string   `json:"abs_path,omitempty"`
	Lineno      int      `json:"lineno,omitempty"`
	Colno       int      `json:"colno,omitempty"`
	ContextLine string   `json:"context_line,omitempty"`
	PreContext  []string `json:"pre_context,omitempty"`
	PostContext []string `json:"post_context,omitempty"`
	InApp       bool     `json:"in_app"`
}

// Breadcrumb is a timestamped trail entry recorded before an error. The
// core routes breadcrumbs; it does not interpret them.
type Breadcrumb struct {
	Type      string         `json:"type,omitempty"`
	Category  string         `json:"category,omitempty"`
	Message   string         `json:"message,omitempty"`
	Level     string         `json:"level,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
}

// NewEventID returns a 32-character hex event identifier.
func NewEventID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
