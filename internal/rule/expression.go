package rule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Predicate kinds the stats aggregator can back. Every leaf of a stored
// requirement must use one of these.
const (
	KindDuelsWon         = "duels_won"
	KindDuelsLost        = "duels_lost"
	KindDuelsPlayed      = "duels_played"
	KindStudyMinutes     = "study_minutes"
	KindStudySessions    = "study_sessions"
	KindStudyDayStreak   = "study_day_streak"
	KindCoursesCompleted = "courses_completed"
	KindFriendsCount     = "friends_count"
	KindReportsFiled     = "reports_filed"
)

// KnownKinds lists every predicate kind in a stable order, used to
// pre-fill stats snapshots so evaluation never sees a missing key.
var KnownKinds = []string{
	KindDuelsWon,
	KindDuelsLost,
	KindDuelsPlayed,
	KindStudyMinutes,
	KindStudySessions,
	KindStudyDayStreak,
	KindCoursesCompleted,
	KindFriendsCount,
	KindReportsFiled,
}

var knownKindSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(KnownKinds))
	for _, k := range KnownKinds {
		set[k] = struct{}{}
	}
	return set
}()

func IsKnownKind(kind string) bool {
	_, ok := knownKindSet[kind]
	return ok
}

var (
	ErrEmptyExpression     = errors.New("requirement expression is empty")
	ErrAmbiguousExpression = errors.New("requirement node must be exactly one of leaf, all, any")
	ErrEmptyComposite      = errors.New("composite node must have at least one child")
	ErrUnknownKind         = errors.New("unknown predicate kind")
	ErrInvalidThreshold    = errors.New("threshold must be greater than zero")
)

// Expression is one node of a requirement tree: either a leaf predicate
// (Kind + Threshold) or a composite (All = AND, Any = OR). The grammar is
// closed: anything that is not exactly one of these shapes is rejected at
// write time rather than interpreted permissively.
type Expression struct {
	Kind      string  `json:"kind,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Scope     string  `json:"scope,omitempty"`

	All []Expression `json:"all,omitempty"`
	Any []Expression `json:"any,omitempty"`
}

func (e Expression) IsLeaf() bool {
	return e.Kind != ""
}

// Validate checks that the expression fits the grammar and references
// only known predicate kinds. Malformed trees must never reach storage.
func (e Expression) Validate() error {
	shapes := 0
	if e.Kind != "" {
		shapes++
	}
	if e.All != nil {
		shapes++
	}
	if e.Any != nil {
		shapes++
	}
	if shapes == 0 {
		return ErrEmptyExpression
	}
	if shapes > 1 {
		return ErrAmbiguousExpression
	}

	if e.IsLeaf() {
		if !IsKnownKind(e.Kind) {
			return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
		}
		if e.Threshold <= 0 {
			return fmt.Errorf("%w: kind %q has threshold %v", ErrInvalidThreshold, e.Kind, e.Threshold)
		}
		return nil
	}

	children := e.All
	if children == nil {
		children = e.Any
	}
	if len(children) == 0 {
		return ErrEmptyComposite
	}
	for i, child := range children {
		if err := child.Validate(); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	return nil
}

// Parse decodes and validates a requirement for storage. Unknown JSON
// fields are rejected so that typos ("treshold") fail loudly at write
// time.
func Parse(raw []byte) (Expression, error) {
	var expr Expression
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&expr); err != nil {
		return Expression{}, fmt.Errorf("invalid requirement json: %w", err)
	}
	if err := expr.Validate(); err != nil {
		return Expression{}, err
	}
	return expr, nil
}

// Decode reads a stored requirement without re-validating it. Used on
// the evaluation path: a row whose kind has since been retired must
// still decode, and Evaluate degrades unknown kinds to unsatisfied
// instead of erroring.
func Decode(raw []byte) (Expression, error) {
	var expr Expression
	if err := json.Unmarshal(raw, &expr); err != nil {
		return Expression{}, fmt.Errorf("invalid requirement json: %w", err)
	}
	return expr, nil
}
