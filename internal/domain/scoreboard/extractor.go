// Package scoreboard extracts objectives and player scores from a decoded
// scoreboard.dat tag tree.
package scoreboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/nbtscore/internal/domain/model"
	"github.com/okian/nbtscore/internal/domain/nbt"
)

// Tag names used by scoreboard.dat.
const (
	tagData         = "data"
	tagPlayerScores = "PlayerScores"
	tagObjectives   = "Objectives"
	tagName         = "Name"
	tagObjective    = "Objective"
	tagScore        = "Score"
	tagLocked       = "Locked"
	tagDisplayName  = "DisplayName"
	tagCriteriaName = "CriteriaName"
	tagRenderType   = "RenderType"
)

// Result holds everything one extraction produced.
type Result struct {
	Objectives []model.ObjectiveDef
	Entries    []model.ScoreEntry
	// Warnings are non-fatal problems in encounter order.
	Warnings []error
}

// Skipped counts records dropped for missing fields.
func (r Result) Skipped() int {
	n := 0
	for _, w := range r.Warnings {
		if errors.Is(w, ErrMissingField) {
			n++
		}
	}
	return n
}

// Extractor walks a root compound and yields normalized records. It keeps no
// per-call state and may be shared between goroutines.
type Extractor struct {
	now       func() time.Time
	timestamp time.Time
}

// NewExtractor creates an Extractor stamped by the wall clock.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads data.Objectives and data.PlayerScores from root.
//
// Only a missing or mistyped data/PlayerScores structure is fatal
// (ErrSchemaMismatch). Incomplete elements are dropped with a warning and
// nothing is deduplicated: repeated pairs are emitted in source order.
func (e *Extractor) Extract(root *nbt.Compound) (Result, error) {
	data, err := requireCompound(root, tagData)
	if err != nil {
		return Result{}, err
	}
	scores, err := requireList(data, tagPlayerScores)
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.Objectives, res.Warnings = extractObjectives(data)

	ts, explicit := e.now(), false
	if !e.timestamp.IsZero() {
		ts, explicit = e.timestamp, true
	}

	res.Entries = make([]model.ScoreEntry, 0, scores.Len())
	for i, item := range scores.Items() {
		c := item.(*nbt.Compound)

		name, okName := nbt.Lookup[nbt.String](c, tagName)
		objective, okObjective := nbt.Lookup[nbt.String](c, tagObjective)
		score, okScore := integer(c, tagScore)
		if !okName || !okObjective || !okScore {
			var missing []string
			if !okName {
				missing = append(missing, tagName)
			}
			if !okObjective {
				missing = append(missing, tagObjective)
			}
			if !okScore {
				missing = append(missing, tagScore)
			}
			res.Warnings = append(res.Warnings, fmt.Errorf("%w: %s[%d] lacks %s",
				ErrMissingField, tagPlayerScores, i, strings.Join(missing, ", ")))
			continue
		}

		locked, _ := nbt.Lookup[nbt.Byte](c, tagLocked)
		res.Entries = append(res.Entries, model.ScoreEntry{
			PlayerName:    string(name),
			ObjectiveName: string(objective),
			Score:         score,
			Timestamp:     ts,
			ExplicitTime:  explicit,
			Locked:        locked != 0,
		})
	}
	return res, nil
}

func extractObjectives(data *nbt.Compound) ([]model.ObjectiveDef, []error) {
	raw, ok := data.Get(tagObjectives)
	if !ok {
		return nil, []error{fmt.Errorf("%w: %s.%s is absent", ErrNoObjectives, tagData, tagObjectives)}
	}
	list, ok := raw.(*nbt.List)
	if !ok {
		return nil, []error{fmt.Errorf("%w: %s.%s is %s, want List", ErrNoObjectives, tagData, tagObjectives, raw.Type())}
	}
	if list.Len() > 0 && list.Elem() != nbt.TypeCompound {
		return nil, []error{fmt.Errorf("%w: %s.%s holds %s, want Compound", ErrNoObjectives, tagData, tagObjectives, list.Elem())}
	}

	var (
		out      = make([]model.ObjectiveDef, 0, list.Len())
		warnings []error
	)
	for i, item := range list.Items() {
		c := item.(*nbt.Compound)

		name, ok := nbt.Lookup[nbt.String](c, tagName)
		if !ok {
			warnings = append(warnings,
				fmt.Errorf("%w: %s[%d] lacks %s", ErrMissingField, tagObjectives, i, tagName))
			continue
		}

		def := model.ObjectiveDef{CriteriaName: string(name), DisplayName: string(name)}
		if t, ok := c.Get(tagDisplayName); ok {
			if text := displayText(t); text != "" {
				def.DisplayName = text
			}
		}
		if v, ok := nbt.Lookup[nbt.String](c, tagCriteriaName); ok {
			def.Criterion = string(v)
		}
		if v, ok := nbt.Lookup[nbt.String](c, tagRenderType); ok {
			def.RenderType = string(v)
		}
		out = append(out, def)
	}
	return out, warnings
}

func requireCompound(parent *nbt.Compound, name string) (*nbt.Compound, error) {
	t, ok := parent.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q is absent", ErrSchemaMismatch, name)
	}
	c, ok := t.(*nbt.Compound)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, want Compound", ErrSchemaMismatch, name, t.Type())
	}
	return c, nil
}

// requireList returns a list of compounds; an empty list of any element type
// is accepted.
func requireList(parent *nbt.Compound, name string) (*nbt.List, error) {
	t, ok := parent.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q is absent", ErrSchemaMismatch, name)
	}
	l, ok := t.(*nbt.List)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, want List", ErrSchemaMismatch, name, t.Type())
	}
	if l.Len() > 0 && l.Elem() != nbt.TypeCompound {
		return nil, fmt.Errorf("%w: %q holds %s, want Compound", ErrSchemaMismatch, name, l.Elem())
	}
	return l, nil
}

// integer widens any integral tag to int64. Older files store scores as Int,
// some tools write Long.
func integer(c *nbt.Compound, name string) (int64, bool) {
	t, ok := c.Get(name)
	if !ok {
		return 0, false
	}
	switch v := t.(type) {
	case nbt.Byte:
		return int64(v), true
	case nbt.Short:
		return int64(v), true
	case nbt.Int:
		return int64(v), true
	case nbt.Long:
		return int64(v), true
	default:
		return 0, false
	}
}
