package scanner

import (
	"context"
	"time"
)

// Want is a single record the buying service is looking for.
type Want struct {
	Barcode string `json:"barcode"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Wants   string `json:"wants"`
}

// LookupResult is the answer for one barcode. Want is nil when nothing matched.
type LookupResult struct {
	Barcode string
	Want    *Want
}

// Matched reports whether the lookup found a want.
func (r LookupResult) Matched() bool { return r.Want != nil }

// Finder resolves a normalized barcode against some wants source.
type Finder interface {
	Find(ctx context.Context, digits string) (LookupResult, error)
}

// OutcomeKind classifies a submitted barcode.
type OutcomeKind string

const (
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeNoMatch  OutcomeKind = "no_match"
	OutcomeMatched  OutcomeKind = "matched"
	OutcomeFailed   OutcomeKind = "failed"
)

// Tone is the feedback cue that goes with an outcome.
type Tone int

const (
	ToneSuccess Tone = iota
	ToneFail
	ToneError
)

// Outcome is what the clerk sees after submitting a barcode.
type Outcome struct {
	Kind    OutcomeKind
	Raw     string
	Barcode string
	Want    *Want
	Err     error
}

// Tone maps the outcome onto success, fail or error feedback.
func (o Outcome) Tone() Tone {
	switch o.Kind {
	case OutcomeMatched:
		return ToneSuccess
	case OutcomeNoMatch:
		return ToneFail
	default:
		return ToneError
	}
}

// ScanRecord is one row of the local scan history.
type ScanRecord struct {
	ID        int64
	RunID     string
	Raw       string
	Barcode   string
	Outcome   OutcomeKind
	Artist    string
	Album     string
	Wants     string
	ScannedAt time.Time
}
