package command_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/nbtscore/internal/adapters/command"
	. "github.com/smartystreets/goconvey/convey"
)

const aliceCSV = "player_name,objective_name,score,display_name\nAlice,deaths,3,Deaths\n"

func TestCSVApp(t *testing.T) {
	Convey("Given a scoreboard file", t, func() {
		dir := t.TempDir()
		input := writeFile(t, dir, "scoreboard.dat", aliceScoreboard())
		output := filepath.Join(dir, "scoreboard.csv")

		Convey("When converting without an output path", func() {
			res := run(t, command.NewCSVApp(), input)

			Convey("Then the CSV is written next to the input", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(readFile(t, output), ShouldEqual, aliceCSV)
				So(res.stdout, ShouldContainSubstring, "saved it as "+output)
			})
		})

		Convey("When converting to an explicit path with options", func() {
			target := filepath.Join(dir, "out.txt")
			res := run(t, command.NewCSVApp(), "--no-display-name", "--delimiter", ";", input, target)

			Convey("Then the options shape the output", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(readFile(t, target), ShouldEqual, "player_name;objective_name;score\nAlice;deaths;3\n")
			})
		})

		Convey("When the wide layout is requested", func() {
			res := run(t, command.NewCSVApp(), "--wide", input)

			Convey("Then players are rows", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(readFile(t, output), ShouldEqual, "Players,Deaths\nAlice,3\n")
			})
		})

		Convey("When the output already exists", func() {
			writeFile(t, dir, "scoreboard.csv", []byte("keep me"))

			Convey("Then it is kept without --force", func() {
				res := run(t, command.NewCSVApp(), input)
				So(res.code, ShouldEqual, command.ExitFailure)
				So(res.stderr, ShouldContainSubstring, "output exists")
				So(readFile(t, output), ShouldEqual, "keep me")
			})

			Convey("Then it is replaced with --force", func() {
				res := run(t, command.NewCSVApp(), "--force", input)
				So(res.code, ShouldEqual, command.ExitOK)
				So(readFile(t, output), ShouldEqual, aliceCSV)
			})
		})

		Convey("When a metrics file is requested", func() {
			metricsFile := filepath.Join(dir, "nbtscore.prom")
			res := run(t, command.NewCSVApp(), "--metrics-file", metricsFile, input)

			Convey("Then it holds the run counters", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(readFile(t, metricsFile), ShouldContainSubstring, "nbtscore_convert_runs_total")
			})
		})
	})

	Convey("Given files that cannot be converted", t, func() {
		dir := t.TempDir()

		Convey("When the input is truncated", func() {
			input := writeFile(t, dir, "cut.dat", aliceScoreboard()[:20])
			res := run(t, command.NewCSVApp(), input)

			Convey("Then the exit code reports a decode error and nothing is left behind", func() {
				So(res.code, ShouldEqual, command.ExitDecode)
				entries, _ := os.ReadDir(dir)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When the input has no scores", func() {
			input := writeFile(t, dir, "empty.dat", noScores())
			res := run(t, command.NewCSVApp(), input)

			Convey("Then the exit code reports a schema mismatch", func() {
				So(res.code, ShouldEqual, command.ExitSchemaMismatch)
				_, err := os.Stat(filepath.Join(dir, "empty.csv"))
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When the input does not exist", func() {
			res := run(t, command.NewCSVApp(), filepath.Join(dir, "missing.dat"))

			Convey("Then the run fails", func() {
				So(res.code, ShouldEqual, command.ExitFailure)
			})
		})
	})

	Convey("Given bad invocations", t, func() {
		cases := map[string][]string{
			"no arguments":      nil,
			"three arguments":   {"a", "b", "c"},
			"unknown flag":      {"--bogus", "a"},
			"bad timestamp":     {"--timestamp", "yesterday", "a"},
			"bad log level":     {"--log-level", "loud", "a"},
			"batch without any": {"--batch"},
		}
		for name, args := range cases {
			Convey("When called with "+name, func() {
				res := run(t, command.NewCSVApp(), args...)

				Convey("Then the exit code reports a usage error", func() {
					So(res.code, ShouldEqual, command.ExitUsage)
				})
			})
		}

		Convey("When asking for help", func() {
			res := run(t, command.NewCSVApp(), "--help")

			Convey("Then usage is printed and the run succeeds", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(res.stdout, ShouldContainSubstring, "input_file [output_file]")
			})
		})
	})
}

func TestCSVApp_Batch(t *testing.T) {
	Convey("Given several scoreboard files and one broken file", t, func() {
		dir := t.TempDir()
		a := writeFile(t, dir, "a.dat", aliceScoreboard())
		b := writeFile(t, dir, "b.dat", aliceScoreboard())
		broken := writeFile(t, dir, "broken.dat", []byte{0x0a, 0x00})

		Convey("When converting them in batch mode", func() {
			res := run(t, command.NewCSVApp(), "--batch", "--workers", "2", a, broken, b)

			Convey("Then good files are converted and the failure sets the exit code", func() {
				So(res.code, ShouldEqual, command.ExitDecode)
				So(readFile(t, filepath.Join(dir, "a.csv")), ShouldEqual, aliceCSV)
				So(readFile(t, filepath.Join(dir, "b.csv")), ShouldEqual, aliceCSV)
				So(strings.Count(res.stdout, "saved it as"), ShouldEqual, 2)
				So(res.stderr, ShouldContainSubstring, "1 of 3 files")
			})
		})
	})
}

func TestCSVApp_BatchOutputClash(t *testing.T) {
	Convey("Given two inputs that differ only in extension", t, func() {
		dir := t.TempDir()
		dat := writeFile(t, dir, "a.dat", aliceScoreboard())
		nbtFile := writeFile(t, dir, "a.nbt", aliceScoreboard())

		Convey("When converting them in batch mode", func() {
			res := run(t, command.NewCSVApp(), "--batch", dat, nbtFile)

			Convey("Then the run is refused before anything is written", func() {
				So(res.code, ShouldEqual, command.ExitUsage)
				So(res.stderr, ShouldContainSubstring, "a.csv")
				_, err := os.Stat(filepath.Join(dir, "a.csv"))
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})
	})
}
