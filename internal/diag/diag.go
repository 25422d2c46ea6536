package diag

import (
	"log/slog"
	"sync"
)

// Severity classifies a diagnostic message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Message is a single diagnostic attached to a processed file.
type Message struct {
	Severity Severity `json:"severity"`
	RuleID   string   `json:"rule_id,omitempty"`
	Source   string   `json:"source,omitempty"` // Transform that emitted the message
	Text     string   `json:"message"`
}

// File is the processing unit diagnostics are recorded against.
// Transforms only append; delivery is up to the caller.
type File struct {
	Path string

	mu       sync.Mutex
	messages []Message
	log      *slog.Logger
}

// NewFile creates a File. A nil logger discards log output.
func NewFile(path string, log *slog.Logger) *File {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &File{Path: path, log: log}
}

// Info records an informational message.
func (f *File) Info(ruleID, source, text string) {
	f.add(Message{Severity: SeverityInfo, RuleID: ruleID, Source: source, Text: text})
}

// Warn records a warning.
func (f *File) Warn(ruleID, source, text string) {
	f.add(Message{Severity: SeverityWarning, RuleID: ruleID, Source: source, Text: text})
}

func (f *File) add(m Message) {
	f.mu.Lock()
	f.messages = append(f.messages, m)
	f.mu.Unlock()
	f.log.Debug("diagnostic", "file", f.Path, "severity", m.Severity, "rule", m.RuleID, "message", m.Text)
}

// Messages returns a copy of the recorded messages, never nil.
func (f *File) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// Count returns how many messages carry the given rule id.
func (f *File) Count(ruleID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.RuleID == ruleID {
			n++
		}
	}
	return n
}
