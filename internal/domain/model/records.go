// Package model contains the normalized scoreboard records passed between
// the extractor, the mapper and the sinks.
package model

import "time"

// ObjectiveDef describes one scoreboard objective. Values are created once
// during extraction and never mutated.
type ObjectiveDef struct {
	CriteriaName string // unique key; the objective's Name tag, referenced by ScoreEntry.ObjectiveName
	DisplayName  string // plain-text display name, defaults to CriteriaName
	Criterion    string // source CriteriaName tag (e.g. "deathCount"), empty when absent
	RenderType   string // "integer" or "hearts", empty when absent
}

// CriteriaColumn is the value stored in objectives.criteria_name. It falls
// back to the objective name when the source carries no criterion.
func (o ObjectiveDef) CriteriaColumn() string {
	if o.Criterion != "" {
		return o.Criterion
	}
	return o.CriteriaName
}

// ScoreEntry is one (player, objective, score) fact. Entries are appended in
// source order and never merged.
type ScoreEntry struct {
	PlayerName    string
	ObjectiveName string
	Score         int64
	Timestamp     time.Time
	// ExplicitTime is set when Timestamp came from the caller rather than
	// the extraction clock. Sinks only persist explicit timestamps.
	ExplicitTime bool
	Locked       bool
}

// Player is a distinct player name.
type Player struct {
	Name string
}

// Tables is the dimension/fact layout consumed by the sinks.
type Tables struct {
	Players    []Player
	Objectives []ObjectiveDef
	Entries    []ScoreEntry
}

// DisplayNames indexes objective display names by criteria name.
func (t Tables) DisplayNames() map[string]string {
	out := make(map[string]string, len(t.Objectives))
	for _, o := range t.Objectives {
		out[o.CriteriaName] = o.DisplayName
	}
	return out
}

// SinkReport counts rows a sink wrote per table. For insert-or-ignore
// tables only newly inserted rows are counted.
type SinkReport struct {
	Players    int64
	Objectives int64
	Stats      int64
}

// Total returns the sum of all counted rows.
func (r SinkReport) Total() int64 { return r.Players + r.Objectives + r.Stats }
