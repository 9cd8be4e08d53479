// Package csvsink writes score entries as RFC 4180 CSV.
package csvsink

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/okian/nbtscore/internal/domain/model"
)

// Header is the column layout of the output.
var Header = []string{"player_name", "objective_name", "score", "display_name"}

// Sink renders model.Tables to a writer. One header row is followed by one
// row per entry in encounter order.
type Sink struct {
	w           io.Writer
	comma       rune
	displayName bool
	wide        bool
}

// New creates a Sink writing to w.
func New(w io.Writer, opts ...Option) *Sink {
	s := &Sink{w: w, comma: ',', displayName: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the sink in logs and metrics.
func (s *Sink) Name() string { return "csv" }

// Write emits the header and every entry. The report counts data rows under
// Stats. Output is identical for identical input.
func (s *Sink) Write(ctx context.Context, tables model.Tables) (model.SinkReport, error) {
	var report model.SinkReport

	cw := csv.NewWriter(s.w)
	cw.Comma = s.comma
	if s.wide {
		return s.writeWide(ctx, cw, tables)
	}

	header := Header
	if !s.displayName {
		header = Header[:3]
	}
	if err := cw.Write(header); err != nil {
		return report, fmt.Errorf("%w: header: %w", ErrWrite, err)
	}

	names := tables.DisplayNames()
	row := make([]string, len(header))
	for i, e := range tables.Entries {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				cw.Flush()
				return report, err
			}
		}
		row[0] = e.PlayerName
		row[1] = e.ObjectiveName
		row[2] = strconv.FormatInt(e.Score, 10)
		if s.displayName {
			row[3] = names[e.ObjectiveName]
		}
		if err := cw.Write(row); err != nil {
			return report, fmt.Errorf("%w: row %d: %w", ErrWrite, i, err)
		}
		report.Stats++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return report, nil
}

// WideHeader is the first cell of the wide layout.
const WideHeader = "Players"

func (s *Sink) writeWide(ctx context.Context, cw *csv.Writer, tables model.Tables) (model.SinkReport, error) {
	var report model.SinkReport

	objectives := slices.Clone(tables.Objectives)
	slices.SortStableFunc(objectives, func(a, b model.ObjectiveDef) int {
		return cmp.Compare(a.CriteriaName, b.CriteriaName)
	})
	players := make([]string, 0, len(tables.Players))
	for _, p := range tables.Players {
		players = append(players, p.Name)
	}
	slices.Sort(players)

	type cell struct{ player, objective string }
	scores := make(map[cell]int64, len(tables.Entries))
	for _, e := range tables.Entries {
		k := cell{e.PlayerName, e.ObjectiveName}
		if _, ok := scores[k]; !ok {
			scores[k] = e.Score
		}
	}

	header := make([]string, 0, len(objectives)+1)
	header = append(header, WideHeader)
	for _, o := range objectives {
		header = append(header, o.DisplayName)
	}
	if err := cw.Write(header); err != nil {
		return report, fmt.Errorf("%w: header: %w", ErrWrite, err)
	}

	row := make([]string, len(header))
	for i, p := range players {
		if err := ctx.Err(); err != nil {
			cw.Flush()
			return report, err
		}
		row[0] = p
		for j, o := range objectives {
			row[j+1] = strconv.FormatInt(scores[cell{p, o.CriteriaName}], 10)
		}
		if err := cw.Write(row); err != nil {
			return report, fmt.Errorf("%w: row %d: %w", ErrWrite, i, err)
		}
		report.Stats++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return report, nil
}

func validDelim(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
