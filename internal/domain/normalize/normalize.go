// Package normalize implements the identity and normalization engine.
//
// The engine is a pure per-event transform: given one raw staged event it
// produces exactly zero or one normalized record, zero only when the payload
// is absent. It never fails a record outright; unparsable fields become
// nulls and the record still participates in reconciliation.
package normalize

import (
	"context"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/domain/identity"
	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	"github.com/batisback/loyverse-daily-sync/internal/domain/parse"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"
)

// Engine turns raw staged events into normalized records.
type Engine interface {
	// Normalize produces the record for e. ok is false only when the
	// event carries no payload; the event is then excluded from the batch.
	Normalize(ctx context.Context, e model.RawEvent) (model.Record, bool)
}

// Option applies a configuration option to the engine.
type Option func(*engine)

// WithLocation sets the reference timezone wall-clock fields are read in.
func WithLocation(loc *time.Location) Option {
	return func(n *engine) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// engine is the in-process Engine. It holds only immutable parser chains,
// so a single instance is safe for concurrent use across workers.
type engine struct {
	loc       *time.Location
	dates     parse.Parser[time.Time]
	wallClock parse.Parser[time.Time]
	stamps    parse.Parser[time.Time]
}

// New creates an Engine with the given options. The default reference
// timezone is UTC; callers normally override it with the operational zone.
func New(opts ...Option) Engine {
	n := &engine{loc: time.UTC}

	for _, opt := range opts {
		opt(n)
	}

	n.dates = parse.Date(n.loc)
	n.wallClock = parse.WallClock(n.loc)
	n.stamps = parse.Timestamp(n.loc)

	return n
}

// Normalize derives identity, canonical types, and the freshness marker for
// one event.
func (n *engine) Normalize(_ context.Context, e model.RawEvent) (model.Record, bool) {
	if e.Payload == nil {
		metrics.RecordPayloadMissing()
		return model.Record{}, false
	}

	rec := model.Record{
		ID:        identity.ID(e.Payload),
		FullName:  optString(e, model.KeyFullName),
		Group:     optString(e, model.KeyGroup),
		EntryType: optString(e, model.KeyEntryType),
		Activity:  optString(e, model.KeyActivity),
		KioskName: optString(e, model.KeyKioskName),
	}

	rawDate, _ := e.Field(model.KeyDate)
	if d, ok := n.dates(rawDate); ok {
		rec.Date = &d
	} else {
		metrics.RecordParseFailure("date")
	}

	rawTime, _ := e.Field(model.KeyTime)
	if ts, ok := n.wallClock(rawDate + " " + rawTime); ok {
		rec.TimeTS = &ts
	} else {
		metrics.RecordParseFailure("time_ts")
	}

	if raw, ok := e.Field(model.KeyDuration); ok {
		if sec, ok := parse.DurationSeconds(raw); ok {
			rec.DurationSec = &sec
		} else {
			metrics.RecordParseFailure("duration")
		}
	}

	rec.UpdatedAt = n.freshness(e)

	metrics.RecordRecordNormalized()
	return rec, true
}

// freshness picks the first parsable of Last Edited On and Created On,
// falling back to the staging load timestamp. Every record ends up with a
// freshness marker even when the source omits edit metadata.
func (n *engine) freshness(e model.RawEvent) time.Time {
	for _, key := range []string{model.KeyLastEditedOn, model.KeyCreatedOn} {
		if raw, ok := e.Field(key); ok {
			if ts, ok := n.stamps(raw); ok {
				return ts
			}
		}
	}
	return e.LoadTS
}

// optString returns a pointer to the payload value, nil when absent.
func optString(e model.RawEvent, key string) *string {
	if v, ok := e.Field(key); ok {
		return &v
	}
	return nil
}
