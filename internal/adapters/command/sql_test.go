package command_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/okian/nbtscore/internal/adapters/command"
	"github.com/okian/nbtscore/internal/adapters/sink/sqlsink"
	"github.com/okian/nbtscore/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDB struct {
	statements []string
	failOn     string
	failErr    error
	tx         *fakeTx
	closed     bool
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.statements = append(f.statements, sql)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return pgconn.CommandTag{}, f.failErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{db: f}
	return f.tx, nil
}

func (f *fakeDB) Close() { f.closed = true }

// fakeTx implements the pgx.Tx methods the command calls; the embedded
// interface panics on anything else.
type fakeTx struct {
	pgx.Tx
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type connector struct {
	db    *fakeDB
	err   error
	calls int
	got   config.Database
}

func (c *connector) connect(_ context.Context, cfg config.Database) (command.DB, error) {
	c.calls++
	c.got = cfg
	if c.err != nil {
		return nil, c.err
	}
	return c.db, nil
}

func TestSQLApp(t *testing.T) {
	Convey("Given a scoreboard file and a database config", t, func() {
		dir := t.TempDir()
		input := writeFile(t, dir, "scoreboard.dat", aliceScoreboard())
		sqlConfig := writeFile(t, dir, "db.yaml", []byte("database:\n  url: postgres://u:p@localhost:5432/scores\n  max_conns: 2\n"))
		db := &fakeDB{}
		conn := &connector{db: db}

		Convey("When converting", func() {
			res := run(t, command.NewSQLApp(conn.connect), input, sqlConfig)

			Convey("Then dimensions are written before stats and the pool is closed", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(res.stdout, ShouldContainSubstring, "Converted nbt to sql: 1 players, 1 objectives, 1 stats inserted")
				So(conn.got.URL, ShouldEqual, "postgres://u:p@localhost:5432/scores")
				So(conn.got.MaxConns, ShouldEqual, 2)
				So(len(db.statements), ShouldEqual, 3)
				So(db.statements[0], ShouldContainSubstring, "INSERT INTO players")
				So(db.statements[1], ShouldContainSubstring, "INSERT INTO objectives")
				So(db.statements[2], ShouldContainSubstring, "INSERT INTO stats")
				So(db.closed, ShouldBeTrue)
				So(db.tx, ShouldBeNil)
			})
		})

		Convey("When the schema is initialized first", func() {
			res := run(t, command.NewSQLApp(conn.connect), "--init-schema", input, sqlConfig)

			Convey("Then the DDL runs before any insert", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(db.statements[0], ShouldEqual, sqlsink.Schema)
				So(len(db.statements), ShouldEqual, 4)
			})
		})

		Convey("When running in a transaction", func() {
			res := run(t, command.NewSQLApp(conn.connect), "--tx", input, sqlConfig)

			Convey("Then the transaction is committed", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(db.tx, ShouldNotBeNil)
				So(db.tx.committed, ShouldBeTrue)
				So(db.tx.rolledBack, ShouldBeFalse)
			})
		})

		Convey("When a stats row references a missing player", func() {
			db.failOn = "INSERT INTO stats"
			db.failErr = &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}

			Convey("Then the exit code reports a referential violation", func() {
				res := run(t, command.NewSQLApp(conn.connect), input, sqlConfig)
				So(res.code, ShouldEqual, command.ExitReferentialViolation)
			})

			Convey("Then a transactional run is rolled back", func() {
				res := run(t, command.NewSQLApp(conn.connect), "--tx", input, sqlConfig)
				So(res.code, ShouldEqual, command.ExitReferentialViolation)
				So(db.tx.rolledBack, ShouldBeTrue)
				So(db.tx.committed, ShouldBeFalse)
			})
		})

		Convey("When a timestamp is given", func() {
			res := run(t, command.NewSQLApp(conn.connect), "--timestamp", "2024-05-01T12:00:00Z", input, sqlConfig)

			Convey("Then stats rows carry an explicit time", func() {
				So(res.code, ShouldEqual, command.ExitOK)
				So(db.statements[2], ShouldContainSubstring, "objective_name, time)")
			})
		})

		Convey("When the database cannot be reached", func() {
			conn.err = command.ErrConnect

			Convey("Then the run fails", func() {
				res := run(t, command.NewSQLApp(conn.connect), input, sqlConfig)
				So(res.code, ShouldEqual, command.ExitFailure)
				So(res.stderr, ShouldContainSubstring, "cannot connect")
			})
		})

		Convey("When the input is not NBT", func() {
			bad := writeFile(t, dir, "bad.dat", []byte("hello"))
			res := run(t, command.NewSQLApp(conn.connect), bad, sqlConfig)

			Convey("Then the exit code reports a decode error and nothing is written", func() {
				So(res.code, ShouldEqual, command.ExitDecode)
				So(db.statements, ShouldBeEmpty)
			})
		})
	})

	Convey("Given bad invocations", t, func() {
		dir := t.TempDir()
		input := writeFile(t, dir, "scoreboard.dat", aliceScoreboard())
		noURL := writeFile(t, dir, "empty.yaml", []byte("log_level: debug\n"))
		conn := &connector{db: &fakeDB{}}

		Convey("When the config has no database url", func() {
			res := run(t, command.NewSQLApp(conn.connect), input, noURL)

			Convey("Then it is a usage error and nothing connects", func() {
				So(res.code, ShouldEqual, command.ExitUsage)
				So(conn.calls, ShouldEqual, 0)
			})
		})

		Convey("When the config argument is missing", func() {
			res := run(t, command.NewSQLApp(conn.connect), input)

			Convey("Then it is a usage error", func() {
				So(res.code, ShouldEqual, command.ExitUsage)
				So(conn.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestExitCode(t *testing.T) {
	Convey("Given errors of every kind", t, func() {
		cases := map[string]struct {
			err  error
			want int
		}{
			"nil":           {nil, command.ExitOK},
			"usage":         {command.ErrUsage, command.ExitUsage},
			"config":        {config.ErrInvalidConfig, command.ExitUsage},
			"input":         {command.ErrInput, command.ExitFailure},
			"referential":   {sqlsink.ErrReferentialViolation, command.ExitReferentialViolation},
			"plain failure": {errors.New("boom"), command.ExitFailure},
		}
		for name, tc := range cases {
			Convey("Then "+name+" maps to its exit code", func() {
				So(command.ExitCode(tc.err), ShouldEqual, tc.want)
			})
		}
	})
}
