package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/nbtscore/internal/adapters/mq/queue"
	"github.com/okian/nbtscore/internal/adapters/mq/worker"
	"github.com/okian/nbtscore/internal/adapters/sink/csvsink"
	service "github.com/okian/nbtscore/internal/app"
	"github.com/okian/nbtscore/internal/config"
	"github.com/okian/nbtscore/pkg/logger"
	"github.com/urfave/cli/v2"
)

const (
	flagConfig        = "config"
	flagNoDisplayName = "no-display-name"
	flagDelimiter     = "delimiter"
	flagWide          = "wide"
	flagBatch         = "batch"
	flagWorkers       = "workers"
	flagForce         = "force"
)

// NewCSVApp builds nbt_to_csv.
func NewCSVApp() *cli.App {
	return &cli.App{
		Name:      "nbt_to_csv",
		Usage:     "convert a scoreboard.dat file to CSV",
		ArgsUsage: "input_file [output_file]",
		Description: "Writes one row per score with the columns player_name, objective_name, score\n" +
			"and display_name. The output defaults to the input path with a .csv extension.\n" +
			"With --batch every argument is an input file converted next to itself.",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "YAML configuration `FILE` (default $" + config.EnvFile + ")"},
			&cli.BoolFlag{Name: flagNoDisplayName, Usage: "omit the display_name column"},
			&cli.StringFlag{Name: flagDelimiter, Usage: "field delimiter `CHAR`"},
			&cli.BoolFlag{Name: flagWide, Usage: "one row per player and one column per objective"},
			&cli.BoolFlag{Name: flagBatch, Usage: "treat every argument as an input file"},
			&cli.IntFlag{Name: flagWorkers, Aliases: []string{"j"}, Usage: "parallel conversions in batch mode (0 = one per CPU)"},
			&cli.BoolFlag{Name: flagForce, Aliases: []string{"f"}, Usage: "overwrite existing output files"},
		}, commonFlags()...),
		HideHelpCommand: true,
		OnUsageError:    onUsageError,
		Action:          csvAction,
	}
}

func csvAction(c *cli.Context) error {
	cfg, err := setup(c, c.String(flagConfig), func(cfg *config.Config) {
		if c.Bool(flagNoDisplayName) {
			cfg.CSV.DisplayName = false
		}
		if c.IsSet(flagDelimiter) {
			cfg.CSV.Delimiter = c.String(flagDelimiter)
		}
		if c.IsSet(flagWide) {
			cfg.CSV.Wide = c.Bool(flagWide)
		}
		if c.IsSet(flagWorkers) {
			cfg.Workers = c.Int(flagWorkers)
		}
	})
	if err != nil {
		return err
	}
	defer exportMetrics(c.Context, cfg)

	comma, _ := cfg.Comma() // validated in setup
	conv := &csvConverter{
		svc:   newService(cfg),
		force: c.Bool(flagForce),
		opts: []csvsink.Option{
			csvsink.WithDisplayName(cfg.CSV.DisplayName),
			csvsink.WithComma(comma),
			csvsink.WithWide(cfg.CSV.Wide),
		},
		out: c.App.Writer,
	}

	args := c.Args().Slice()
	if c.Bool(flagBatch) {
		if len(args) == 0 {
			return usageError("--batch needs at least one input file")
		}
		return conv.batch(c.Context, args, cfg.Workers)
	}

	var input, output string
	switch len(args) {
	case 1:
		input, output = args[0], csvPath(args[0])
	case 2:
		input, output = args[0], args[1]
	default:
		return usageError("expected input_file [output_file], got %d arguments", len(args))
	}
	if _, err := conv.convert(c.Context, input, output); err != nil {
		return err
	}
	fmt.Fprintf(conv.out, "Converted nbt to csv and saved it as %s\n", output)
	return nil
}

// csvPath replaces the extension of input with .csv.
func csvPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".csv"
}

type csvConverter struct {
	svc   *service.Service
	opts  []csvsink.Option
	force bool
	out   io.Writer
}

// convert writes input as CSV to a temporary file next to output and
// renames it into place only when the run succeeded.
func (cc *csvConverter) convert(ctx context.Context, input, output string) (service.Report, error) {
	data, err := readInput(input)
	if err != nil {
		return service.Report{}, err
	}
	if !cc.force {
		if _, err := os.Stat(output); err == nil {
			return service.Report{}, fmt.Errorf("%w: %s (use --force to overwrite)", ErrOutputExists, output)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return service.Report{}, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	report, err := cc.svc.Convert(ctx, data, csvsink.New(bw, cc.opts...))
	if err != nil {
		return report, err
	}
	if err := bw.Flush(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	if err := tmp.Close(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return report, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	committed = true
	return report, nil
}

func (cc *csvConverter) batch(ctx context.Context, inputs []string, workers int) error {
	jobs := make([]queue.Job, 0, len(inputs))
	writers := make(map[string]string, len(inputs))
	for i, in := range inputs {
		out := csvPath(in)
		key := filepath.Clean(out)
		if prev, ok := writers[key]; ok {
			return usageError("%s and %s would both be written to %s", prev, in, out)
		}
		writers[key] = in
		jobs = append(jobs, queue.NewJob(i, in, out))
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(len(jobs)))
	for _, job := range jobs {
		if err := q.Enqueue(ctx, job); err != nil {
			return err
		}
	}
	if err := q.Close(); err != nil {
		return err
	}

	pool := worker.NewPool(workers, worker.HandlerFunc(func(ctx context.Context, job queue.Job) (service.Report, error) {
		return cc.convert(ctx, job.Input, job.Output)
	}), worker.WithLogger(logger.Named("batch")))

	var errs []error
	for _, r := range pool.Run(ctx, q) {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Input, r.Err))
			continue
		}
		fmt.Fprintf(cc.out, "Converted nbt to csv and saved it as %s\n", r.Job.Output)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %d of %d files: %w", ErrBatch, len(errs), len(inputs), errors.Join(errs...))
	}
	return nil
}
