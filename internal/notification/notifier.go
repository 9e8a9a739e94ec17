// Package notification delivers index events (composition changes, ingest
// failures) to external channels: log, webhook, Telegram.
package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	"index-systemv1/internal/index"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Event names the pipeline occurrence behind an alert.
type Event string

const (
	EventCompositionChange Event = "composition_change"
	EventIngestFailures    Event = "ingest_failures"
	EventPassFailed        Event = "pass_failed"
)

// Alert is one pipeline event bound for the notification channels.
// Date/Added/Removed are set for composition changes, the ticker counts for
// ingestion trouble; backends render whichever fields the event carries.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Event   Event      `json:"event"`
	Title   string     `json:"title"`
	Message string     `json:"message,omitempty"`

	Date          string   `json:"date,omitempty"`
	Added         []string `json:"added,omitempty"`
	Removed       []string `json:"removed,omitempty"`
	FailedTickers int      `json:"failed_tickers,omitempty"`
	UniverseSize  int      `json:"universe_size,omitempty"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier logs alerts; always present so events are never silent.
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// Multi fans an alert out to several backends. Delivery failures on one
// backend are logged and do not block the others.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a fan-out notifier.
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Send(ctx context.Context, alert Alert) error {
	for _, n := range m.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
		}
	}
	return nil
}

// CompositionChangeAlert builds the alert for a detected constituent-set
// change.
func CompositionChangeAlert(change index.Change) Alert {
	return Alert{
		Level:   AlertInfo,
		Event:   EventCompositionChange,
		Title:   fmt.Sprintf("Index composition changed on %s", change.Date),
		Message: fmt.Sprintf("added: %s; removed: %s", joinOrDash(change.Added), joinOrDash(change.Removed)),
		Date:    change.Date,
		Added:   change.Added,
		Removed: change.Removed,
	}
}

// IngestFailureAlert builds the alert for a pass with failed tickers.
func IngestFailureAlert(failed, universe int) Alert {
	level := AlertWarning
	if failed >= universe/2 {
		level = AlertCritical
	}
	return Alert{
		Level:         level,
		Event:         EventIngestFailures,
		Title:         "Ingestion pass had failures",
		Message:       fmt.Sprintf("%d of %d tickers failed to ingest", failed, universe),
		FailedTickers: failed,
		UniverseSize:  universe,
	}
}

// PassFailedAlert builds the alert for an aborted ingestion pass (universe
// fetch or store failure).
func PassFailedAlert(err error) Alert {
	return Alert{
		Level:   AlertCritical,
		Event:   EventPassFailed,
		Title:   "Ingestion pass failed",
		Message: err.Error(),
	}
}

func joinOrDash(tickers []string) string {
	if len(tickers) == 0 {
		return "-"
	}
	return strings.Join(tickers, ", ")
}
