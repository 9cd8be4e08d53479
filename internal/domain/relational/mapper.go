// Package relational projects extracted records onto the players,
// objectives and stats tables.
package relational

import (
	"fmt"

	"github.com/okian/nbtscore/internal/domain/dedupe"
	"github.com/okian/nbtscore/internal/domain/model"
)

// Map derives the dimension tables from objectives and entries.
//
// Players are the distinct player names in first-seen order. Objectives are
// distinct by CriteriaName and the first definition wins. Entries pass
// through unchanged; nothing is aggregated. The returned warnings are in
// encounter order.
func Map(objectives []model.ObjectiveDef, entries []model.ScoreEntry) (model.Tables, []error) {
	var warnings []error

	defs := make(map[string]model.ObjectiveDef, len(objectives))
	outObjectives := make([]model.ObjectiveDef, 0, len(objectives))
	for _, o := range objectives {
		first, seen := defs[o.CriteriaName]
		if !seen {
			defs[o.CriteriaName] = o
			outObjectives = append(outObjectives, o)
			continue
		}
		if first.DisplayName != o.DisplayName {
			warnings = append(warnings, fmt.Errorf("%w: objective %q is %q, ignoring %q",
				ErrDisplayNameConflict, o.CriteriaName, first.DisplayName, o.DisplayName))
		}
	}

	players := dedupe.NewSet(dedupe.WithCapacity(len(entries)))
	unknown := dedupe.NewSet()
	for _, e := range entries {
		players.SeenAndRecord(e.PlayerName)
		if _, ok := defs[e.ObjectiveName]; ok {
			continue
		}
		if !unknown.SeenAndRecord(e.ObjectiveName) {
			warnings = append(warnings, fmt.Errorf("%w: %q has no definition", ErrUnknownObjective, e.ObjectiveName))
		}
	}

	outPlayers := make([]model.Player, 0, players.Size())
	for _, name := range players.Keys() {
		outPlayers = append(outPlayers, model.Player{Name: name})
	}

	return model.Tables{
		Players:    outPlayers,
		Objectives: outObjectives,
		Entries:    entries,
	}, warnings
}
