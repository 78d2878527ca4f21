package transfer

import (
	"log/slog"
	"sync"
)

// Severity of a user notification.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Reporter receives user notifications. Report must not block.
type Reporter interface {
	Report(msg string, sev Severity)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(msg string, sev Severity)

func (f ReporterFunc) Report(msg string, sev Severity) { f(msg, sev) }

// Message is one recorded notification.
type Message struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// MessageLog collects notifications, e.g. for one HTTP response.
type MessageLog struct {
	mu   sync.Mutex
	msgs []Message
}

func (l *MessageLog) Report(msg string, sev Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, Message{Text: msg, Severity: sev})
}

// Messages returns a copy of the recorded notifications.
func (l *MessageLog) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// SlogReporter writes notifications to a logger.
type SlogReporter struct {
	Logger *slog.Logger
}

func (r SlogReporter) Report(msg string, sev Severity) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if sev == SeverityError {
		logger.Warn("transfer notification", "message", msg)
		return
	}
	logger.Info("transfer notification", "message", msg)
}

// MultiReporter fans notifications out to every reporter.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(msg string, sev Severity) {
		for _, r := range reporters {
			if r != nil {
				r.Report(msg, sev)
			}
		}
	})
}

type discardReporter struct{}

func (discardReporter) Report(string, Severity) {}
