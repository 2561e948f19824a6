package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Checker is a thin façade over a Finder and the history store, keeping CLI
// code simple. Submissions are serialized so at most one lookup is in flight.
type Checker struct {
	finder  Finder
	history *Database
	runID   string
	log     *slog.Logger
	now     func() time.Time

	mu sync.Mutex
}

// NewChecker wires a finder to an optional history store. Each checker gets
// its own run id so history can be grouped per scanning run.
func NewChecker(finder Finder, history *Database, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		finder:  finder,
		history: history,
		runID:   uuid.NewString(),
		log:     logger,
		now:     time.Now,
	}
}

// RunID identifies this checker run in the scan history.
func (s *Checker) RunID() string { return s.runID }

// Submit normalizes raw input, looks it up and records the outcome. Invalid
// input never reaches the finder. Every lookup failure, whatever its cause,
// becomes OutcomeFailed with the cause kept in Err.
func (s *Checker) Submit(ctx context.Context, raw string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.resolve(ctx, raw)
	if s.history != nil {
		if _, err := s.history.RecordScan(s.runID, out, s.now()); err != nil {
			s.log.Warn("record scan", "err", err)
		}
	}
	return out
}

func (s *Checker) resolve(ctx context.Context, raw string) Outcome {
	out := Outcome{Raw: raw}

	digits, err := Normalize(raw)
	if err != nil {
		out.Kind = OutcomeRejected
		out.Err = err
		return out
	}
	out.Barcode = digits

	res, err := s.finder.Find(ctx, digits)
	switch {
	case err != nil:
		out.Kind = OutcomeFailed
		out.Err = err
		if errors.Is(err, ErrNoSession) {
			s.log.Warn("lookup without session", "barcode", digits)
		} else {
			s.log.Debug("lookup failed", "barcode", digits, "err", err)
		}
	case res.Matched():
		out.Kind = OutcomeMatched
		out.Want = res.Want
	default:
		out.Kind = OutcomeNoMatch
	}
	return out
}
