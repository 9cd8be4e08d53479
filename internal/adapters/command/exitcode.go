package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/nbtscore/internal/adapters/sink/sqlsink"
	"github.com/okian/nbtscore/internal/config"
	"github.com/okian/nbtscore/internal/domain/nbt"
	"github.com/okian/nbtscore/internal/domain/scoreboard"
	"github.com/urfave/cli/v2"
)

// Process exit codes.
const (
	ExitOK                   = 0
	ExitFailure              = 1
	ExitUsage                = 2
	ExitDecode               = 3
	ExitSchemaMismatch       = 4
	ExitReferentialViolation = 5
)

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage), errors.Is(err, config.ErrInvalidConfig):
		return ExitUsage
	case errors.Is(err, nbt.ErrTruncatedInput),
		errors.Is(err, nbt.ErrMalformedFormat),
		errors.Is(err, nbt.ErrInvalidEncoding),
		errors.Is(err, nbt.ErrUnexpectedEnd):
		return ExitDecode
	case errors.Is(err, scoreboard.ErrSchemaMismatch):
		return ExitSchemaMismatch
	case errors.Is(err, sqlsink.ErrReferentialViolation):
		return ExitReferentialViolation
	default:
		return ExitFailure
	}
}

// Run executes app with args, reports a failure on the app's error writer
// and returns the exit code.
func Run(ctx context.Context, app *cli.App, args []string) int {
	err := app.RunContext(ctx, args)
	if err != nil {
		fmt.Fprintf(app.ErrWriter, "%s: %v\n", app.Name, err)
	}
	return ExitCode(err)
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

func onUsageError(_ *cli.Context, err error, _ bool) error {
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
