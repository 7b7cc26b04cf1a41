package ruleset

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/storage"
)

// Loader fetches and parses rule-set documents.
type Loader struct {
	reader storage.Reader
	logger *slog.Logger
}

// NewLoader creates a loader reading through reader.
func NewLoader(reader storage.Reader, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{reader: reader, logger: logger}
}

// Load returns the parsed document at loc, or nil when it is missing,
// unreadable or malformed. Failures are logged, never returned; callers
// must check for nil.
func (l *Loader) Load(ctx context.Context, loc storage.Location) *core.RuleSetDocument {
	text, err := l.reader.ReadText(ctx, loc)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrBucketNotFound) {
			l.logger.Error("rule-set not found", slog.String("location", loc.String()), slog.String("error", err.Error()))
		} else {
			l.logger.Error("rule-set read failed", slog.String("location", loc.String()), slog.String("error", err.Error()))
		}
		return nil
	}

	doc, err := Parse([]byte(text))
	if err != nil {
		l.logger.Error("rule-set parse error", slog.String("location", loc.String()), slog.String("error", err.Error()))
		return nil
	}

	if unknown := UnknownKeys([]byte(text)); len(unknown) > 0 {
		l.logger.Debug("rule-set keys ignored",
			slog.String("location", loc.String()),
			slog.String("keys", strings.Join(unknown, ",")))
	}

	l.logger.Debug("rule-set loaded",
		slog.String("location", loc.String()),
		slog.Int("query_sources", len(doc.QuerySources)),
		slog.Int("rules", len(doc.Rules)))
	return doc
}
