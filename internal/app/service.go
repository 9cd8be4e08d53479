// Package service runs the scoreboard conversion pipeline: decode, extract,
// map and write to a sink.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/nbtscore/internal/domain/model"
	"github.com/okian/nbtscore/internal/domain/nbt"
	"github.com/okian/nbtscore/internal/domain/relational"
	"github.com/okian/nbtscore/internal/domain/scoreboard"
	"github.com/okian/nbtscore/pkg/logger"
	"github.com/okian/nbtscore/pkg/metrics"
)

// Pipeline stages, used as the stage label of the duration histogram.
const (
	StageDecode  = "decode"
	StageExtract = "extract"
	StageMap     = "map"
	StageWrite   = "write"
)

// Sink persists the relational tables of one run.
type Sink interface {
	Name() string
	Write(ctx context.Context, tables model.Tables) (model.SinkReport, error)
}

// Report summarizes one run. On failure it holds whatever was counted
// before the error.
type Report struct {
	RunID      string
	Players    int
	Objectives int
	Entries    int
	Skipped    int
	Warnings   []error
	Sink       model.SinkReport
	Duration   time.Duration
}

// Service converts scoreboard files. It holds no per-run state and is safe
// for concurrent use.
type Service struct {
	logger    logger.Logger
	metrics   *metrics.Manager
	now       func() time.Time
	timestamp time.Time
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		logger:  logger.Get().Named("convert"),
		metrics: metrics.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert runs the pipeline over data and writes the result to sink.
//
// Decode and schema errors abort before the sink is touched. A sink error
// is returned together with the partial sink report. Non-fatal problems are
// collected in Report.Warnings.
func (s *Service) Convert(ctx context.Context, data []byte, sink Sink) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	runID := logger.String("run_id", report.RunID)

	err := s.convert(ctx, data, sink, &report)
	report.Duration = time.Since(start)

	if err != nil {
		s.metrics.RecordRun(metrics.OutcomeFailure)
		s.logger.Error(ctx, "conversion failed", append(summary(report), runID, logger.Error(err))...)
		return report, err
	}

	s.metrics.RecordRun(metrics.OutcomeSuccess)
	if len(report.Warnings) > 0 {
		for _, w := range report.Warnings {
			s.logger.Debug(ctx, "warning", runID, logger.Error(w))
		}
		s.logger.Warn(ctx, "records skipped or inconsistent",
			runID,
			logger.Int("skipped", report.Skipped),
			logger.Int("warnings", len(report.Warnings)),
		)
	}
	s.logger.Info(ctx, "conversion finished", append(summary(report), runID)...)
	return report, nil
}

func (s *Service) convert(ctx context.Context, data []byte, sink Sink, report *Report) error {
	if sink == nil {
		return ErrNoSink
	}

	var root *nbt.Compound
	err := s.stage(StageDecode, func() (err error) {
		root, err = nbt.Decode(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var res scoreboard.Result
	err = s.stage(StageExtract, func() (err error) {
		res, err = s.extractor().Extract(root)
		return err
	})
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	report.Skipped = res.Skipped()
	report.Warnings = append(report.Warnings, res.Warnings...)
	s.metrics.RecordExtracted("objective", len(res.Objectives))
	s.metrics.RecordExtracted("entry", len(res.Entries))
	s.metrics.RecordSkipped(report.Skipped)

	mapStart := time.Now()
	tables, warnings := relational.Map(res.Objectives, res.Entries)
	s.metrics.ObserveStage(StageMap, time.Since(mapStart))
	report.Warnings = append(report.Warnings, warnings...)
	report.Players = len(tables.Players)
	report.Objectives = len(tables.Objectives)
	report.Entries = len(tables.Entries)
	for _, w := range report.Warnings {
		s.metrics.RecordWarning(warningKind(w))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.stage(StageWrite, func() (err error) {
		report.Sink, err = sink.Write(ctx, tables)
		s.recordSinkRows(sink.Name(), report.Sink)
		if err != nil {
			return fmt.Errorf("write %s: %w", sink.Name(), err)
		}
		return nil
	})
}

// recordSinkRows counts rows from the sink report, so partial writes are
// counted too.
func (s *Service) recordSinkRows(sink string, r model.SinkReport) {
	s.metrics.RecordSinkRows(sink, "players", r.Players)
	s.metrics.RecordSinkRows(sink, "objectives", r.Objectives)
	s.metrics.RecordSinkRows(sink, "stats", r.Stats)
}

func (s *Service) extractor() *scoreboard.Extractor {
	return scoreboard.NewExtractor(
		scoreboard.WithClock(s.now),
		scoreboard.WithTimestamp(s.timestamp),
	)
}

func (s *Service) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveStage(name, time.Since(start))
	return err
}

func summary(r Report) []logger.Field {
	return []logger.Field{
		logger.Int("players", r.Players),
		logger.Int("objectives", r.Objectives),
		logger.Int("entries", r.Entries),
		logger.Int("skipped", r.Skipped),
		logger.Int64("rows", r.Sink.Total()),
		logger.Duration("duration", r.Duration),
	}
}

func warningKind(err error) string {
	switch {
	case errors.Is(err, scoreboard.ErrMissingField):
		return "missing_field"
	case errors.Is(err, scoreboard.ErrNoObjectives):
		return "no_objectives"
	case errors.Is(err, relational.ErrDisplayNameConflict):
		return "display_name_conflict"
	case errors.Is(err, relational.ErrUnknownObjective):
		return "unknown_objective"
	default:
		return "other"
	}
}
