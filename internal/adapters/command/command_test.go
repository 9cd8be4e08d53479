package command_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/nbtscore/internal/adapters/command"
	"github.com/okian/nbtscore/internal/config"
	"github.com/okian/nbtscore/internal/domain/nbt"
	"github.com/okian/nbtscore/internal/domain/nbt/nbttest"
	"github.com/urfave/cli/v2"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, app *cli.App, args ...string) result {
	t.Helper()
	t.Setenv(config.EnvFile, "")
	var out, errOut bytes.Buffer
	app.Writer, app.ErrWriter = &out, &errOut
	code := command.Run(context.Background(), app, append([]string{app.Name}, args...))
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func aliceScoreboard() []byte {
	return nbttest.Gzip(nbttest.Encode("", nbttest.C("data", nbttest.C(
		"Objectives", nbttest.L(nbt.TypeCompound,
			nbttest.C("Name", nbt.String("deaths"), "DisplayName", nbt.String(`{"text":"Deaths"}`), "CriteriaName", nbt.String("deathCount")),
		),
		"PlayerScores", nbttest.L(nbt.TypeCompound,
			nbttest.C("Name", nbt.String("Alice"), "Objective", nbt.String("deaths"), "Score", nbt.Int(3)),
		),
	))))
}

func noScores() []byte {
	return nbttest.Encode("", nbttest.C("data", nbttest.C("Objectives", nbttest.L(nbt.TypeEnd))))
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
