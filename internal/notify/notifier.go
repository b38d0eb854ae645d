// Package notify formats scan results as plain-text reports and delivers
// them to all registered channels (Telegram, Discord).
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches run reports to one or more Senders. A sender failure
// does not prevent delivery to the remaining senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders. An
// empty sender list yields a Notifier that silently does nothing.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// SendReport formats the top-scored items of a run and delivers the report
// on every channel.
func (n *Notifier) SendReport(ctx context.Context, report domain.RunReport, items []domain.ScoredItem, topN int) error {
	if len(n.senders) == 0 {
		return nil
	}

	title := fmt.Sprintf("scan %s: %d opportunities", shortID(report.RunID), report.Scored)
	return n.dispatch(ctx, title, FormatReport(report, items, topN))
}

// dispatch iterates over all senders. Errors from individual senders are
// collected and returned as a combined error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatReport renders the top n items as an aligned plain-text table, one
// line per item, plus the run's stage counts.
func FormatReport(report domain.RunReport, items []domain.ScoredItem, n int) string {
	if n > len(items) {
		n = len(items)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "pairs %d / matched %d / eligible %d / scored %d\n",
		report.TotalPairs, report.Matched, report.Eligible, report.Scored)

	for i := 0; i < n; i++ {
		item := items[i]
		mark := ""
		if item.VolumeApproximated {
			mark = "~"
		}
		fmt.Fprintf(&b, "%2d. %-14s %-6s %-16s margin %7.2f (%5.1f%%) score %.4f%s\n",
			i+1,
			item.Item.StyleID,
			item.Item.Size.String(),
			item.Margin.ChosenAction,
			item.Margin.CrossingMargin,
			item.Margin.CrossingMarginRate*100,
			item.Score,
			mark,
		)
	}
	return b.String()
}
