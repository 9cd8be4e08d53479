package csvsink_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/okian/nbtscore/internal/adapters/sink/csvsink"
	"github.com/okian/nbtscore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func aliceTables() model.Tables {
	return model.Tables{
		Players:    []model.Player{{Name: "Alice"}},
		Objectives: []model.ObjectiveDef{{CriteriaName: "deaths", DisplayName: "Deaths"}},
		Entries:    []model.ScoreEntry{{PlayerName: "Alice", ObjectiveName: "deaths", Score: 3}},
	}
}

func TestSink_Write(t *testing.T) {
	ctx := context.Background()

	Convey("Given the single-score scoreboard", t, func() {
		var buf bytes.Buffer
		s := csvsink.New(&buf)

		Convey("When writing", func() {
			report, err := s.Write(ctx, aliceTables())

			Convey("Then the header and one row are emitted", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "player_name,objective_name,score,display_name\nAlice,deaths,3,Deaths\n")
				So(report.Stats, ShouldEqual, 1)
				So(report.Total(), ShouldEqual, 1)
			})
		})

		Convey("When writing twice to separate buffers", func() {
			var other bytes.Buffer
			_, err1 := s.Write(ctx, aliceTables())
			_, err2 := csvsink.New(&other).Write(ctx, aliceTables())

			Convey("Then the output is byte-identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(other.Bytes(), ShouldResemble, buf.Bytes())
			})
		})
	})

	Convey("Given fields that need quoting", t, func() {
		tables := model.Tables{
			Objectives: []model.ObjectiveDef{{CriteriaName: "k", DisplayName: `Kills, "total"`}},
			Entries: []model.ScoreEntry{
				{PlayerName: "a,b", ObjectiveName: "k", Score: -5},
				{PlayerName: "line\nbreak", ObjectiveName: "missing", Score: 0},
			},
		}
		var buf bytes.Buffer

		Convey("When writing", func() {
			_, err := csvsink.New(&buf).Write(ctx, tables)

			Convey("Then they are quoted and unknown display names are empty", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual,
					"player_name,objective_name,score,display_name\n"+
						`"a,b",k,-5,"Kills, ""total"""`+"\n"+
						"\"line\nbreak\",missing,0,\n")
			})
		})
	})

	Convey("Given options", t, func() {
		var buf bytes.Buffer

		Convey("When the display name is disabled and the delimiter is a semicolon", func() {
			_, err := csvsink.New(&buf, csvsink.WithDisplayName(false), csvsink.WithComma(';')).Write(ctx, aliceTables())

			Convey("Then three columns are written with the delimiter", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "player_name;objective_name;score\nAlice;deaths;3\n")
			})
		})

		Convey("When the delimiter is invalid", func() {
			_, err := csvsink.New(&buf, csvsink.WithComma('"')).Write(ctx, aliceTables())

			Convey("Then the default comma is kept", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldStartWith, "player_name,objective_name")
			})
		})
	})

	Convey("Given a writer that fails", t, func() {
		_, err := csvsink.New(failingWriter{}).Write(ctx, aliceTables())

		Convey("Then the error wraps ErrWrite", func() {
			So(errors.Is(err, csvsink.ErrWrite), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		var buf bytes.Buffer
		report, err := csvsink.New(&buf).Write(cctx, aliceTables())

		Convey("Then no rows are written", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(report.Stats, ShouldEqual, 0)
		})
	})

	Convey("Given no entries", t, func() {
		var buf bytes.Buffer
		report, err := csvsink.New(&buf).Write(ctx, model.Tables{})

		Convey("Then only the header is written", func() {
			So(err, ShouldBeNil)
			So(buf.String(), ShouldEqual, "player_name,objective_name,score,display_name\n")
			So(report.Total(), ShouldEqual, 0)
		})
	})

	Convey("Given the wide layout", t, func() {
		tables := model.Tables{
			Players: []model.Player{{Name: "bob"}, {Name: "Alice"}},
			Objectives: []model.ObjectiveDef{
				{CriteriaName: "kills", DisplayName: "Kills"},
				{CriteriaName: "deaths", DisplayName: "Deaths"},
			},
			Entries: []model.ScoreEntry{
				{PlayerName: "bob", ObjectiveName: "kills", Score: 4},
				{PlayerName: "Alice", ObjectiveName: "deaths", Score: 3},
				{PlayerName: "Alice", ObjectiveName: "deaths", Score: 9},
			},
		}
		var buf bytes.Buffer

		Convey("When writing", func() {
			report, err := csvsink.New(&buf, csvsink.WithWide(true)).Write(ctx, tables)

			Convey("Then players are rows and objectives are columns, both sorted", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "Players,Deaths,Kills\nAlice,3,0\nbob,0,4\n")
				So(report.Stats, ShouldEqual, 2)
			})
		})
	})
}

func TestSink_RepeatedPairs(t *testing.T) {
	Convey("Given entries that repeat a (player, objective) pair", t, func() {
		tables := aliceTables()
		tables.Players = append(tables.Players, model.Player{Name: "Bob"})
		tables.Entries = []model.ScoreEntry{
			{PlayerName: "Alice", ObjectiveName: "deaths", Score: 1},
			{PlayerName: "Bob", ObjectiveName: "deaths", Score: 2},
			{PlayerName: "Alice", ObjectiveName: "deaths", Score: 1},
		}

		Convey("When writing", func() {
			var buf bytes.Buffer
			report, err := csvsink.New(&buf).Write(context.Background(), tables)

			Convey("Then each entry is its own row in encounter order", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "player_name,objective_name,score,display_name\n"+
					"Alice,deaths,1,Deaths\n"+
					"Bob,deaths,2,Deaths\n"+
					"Alice,deaths,1,Deaths\n")
				So(report.Stats, ShouldEqual, 3)
			})
		})
	})
}
