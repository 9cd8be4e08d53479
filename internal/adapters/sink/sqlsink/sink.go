// Package sqlsink writes the players, objectives and stats tables to
// PostgreSQL through pgx.
package sqlsink

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/okian/nbtscore/internal/domain/model"
	"github.com/okian/nbtscore/pkg/logger"
)

// foreignKeyViolation is the SQLSTATE PostgreSQL reports for a failed
// REFERENCES check.
const foreignKeyViolation = "23503"

// DBTX is the statement surface shared by *pgxpool.Pool, *pgx.Conn and
// pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sink inserts rows one statement at a time. Players and objectives are
// insert-or-ignore and always complete before any stats row.
type Sink struct {
	db   DBTX
	log  logger.Logger
	name string
}

// New creates a Sink executing against db.
func New(db DBTX, opts ...Option) *Sink {
	s := &Sink{db: db, log: logger.Get().Named("sqlsink"), name: "sql"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the sink in logs and metrics.
func (s *Sink) Name() string { return s.name }

// Write inserts players, then objectives, then stats. On failure the report
// holds the rows written so far and the error wraps ErrReferentialViolation
// or ErrWrite. Nothing is retried or rolled back here.
func (s *Sink) Write(ctx context.Context, tables model.Tables) (model.SinkReport, error) {
	var report model.SinkReport

	for _, p := range tables.Players {
		n, err := s.exec(ctx, "players", insertPlayer, p.Name)
		if err != nil {
			return report, err
		}
		report.Players += n
	}

	for _, o := range tables.Objectives {
		n, err := s.exec(ctx, "objectives", insertObjective, o.CriteriaName, o.DisplayName, o.CriteriaColumn())
		if err != nil {
			return report, err
		}
		report.Objectives += n
	}

	for _, e := range tables.Entries {
		var (
			n   int64
			err error
		)
		if e.ExplicitTime {
			n, err = s.exec(ctx, "stats", insertStatAt, e.Score, e.PlayerName, e.ObjectiveName, e.Timestamp)
		} else {
			n, err = s.exec(ctx, "stats", insertStat, e.Score, e.PlayerName, e.ObjectiveName)
		}
		if err != nil {
			return report, err
		}
		report.Stats += n
	}

	s.log.Debug(ctx, "tables written",
		logger.Int64("players", report.Players),
		logger.Int64("objectives", report.Objectives),
		logger.Int64("stats", report.Stats))
	return report, nil
}

func (s *Sink) exec(ctx context.Context, table, sql string, args ...any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return 0, fmt.Errorf("%w: %s: %w", ErrReferentialViolation, table, err)
		}
		return 0, fmt.Errorf("%w: %s: %w", ErrWrite, table, err)
	}
	return tag.RowsAffected(), nil
}
