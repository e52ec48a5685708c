package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func load(csv string, opts ...ingest.Option) (*ingest.Result, error) {
	return ingest.Load(context.Background(), strings.NewReader(csv), opts...)
}

func TestLoad_ValidFiles(t *testing.T) {
	Convey("Given a CSV with the documented header", t, func() {
		Convey("When it holds a single shot with an xG value", func() {
			res, err := load("x,y,event_type,xg,xT\n88,34,shot,0.45,\n")

			Convey("Then it should produce one shot at the given position", func() {
				So(err, ShouldBeNil)
				So(res.Rows, ShouldEqual, 1)
				So(res.Dataset.Len(), ShouldEqual, 1)
				ev := res.Dataset.Events[0]
				So(ev.Type, ShouldEqual, model.Shot)
				So(ev.X, ShouldEqual, 88)
				So(ev.Y, ShouldEqual, 34)
				So(*ev.XG, ShouldEqual, 0.45)
				So(ev.XT, ShouldBeNil)
				So(ev.Row, ShouldEqual, 1)
				So(res.Warnings, ShouldBeEmpty)
			})
		})

		Convey("When it holds many valid rows of both types", func() {
			var b strings.Builder
			b.WriteString("x,y,event_type,xg,xT\n")
			for i := 0; i < 40; i++ {
				if i%2 == 0 {
					fmt.Fprintf(&b, "%d,%d,shot,0.%02d,\n", 80+i, 10+i, i)
				} else {
					fmt.Fprintf(&b, "%d,%d,pass,,0.%02d\n", 20+i, 5+i, i)
				}
			}
			res, err := load(b.String())

			Convey("Then the dataset length should equal the row count", func() {
				So(err, ShouldBeNil)
				So(res.Rows, ShouldEqual, 40)
				So(res.Dataset.Len(), ShouldEqual, 40)
				counts := res.Dataset.CountByType()
				So(counts[model.Shot], ShouldEqual, 20)
				So(counts[model.Pass], ShouldEqual, 20)
			})
		})

		Convey("When header names differ in case and order and carry extra columns", func() {
			res, err := load("\ufeffEvent_Type , XT, player, Y, X, xG\npass,0.2,Kim,40,60,\n")

			Convey("Then the columns should still be matched", func() {
				So(err, ShouldBeNil)
				ev := res.Dataset.Events[0]
				So(ev.Type, ShouldEqual, model.Pass)
				So(ev.X, ShouldEqual, 60)
				So(ev.Y, ShouldEqual, 40)
				So(*ev.XT, ShouldEqual, 0.2)
			})
		})

		Convey("When the metric columns are absent entirely", func() {
			res, err := load("x,y,event_type\n100,40,shot\n50,30,pass\n")

			Convey("Then events load with missing metrics and no warnings", func() {
				So(err, ShouldBeNil)
				So(res.Dataset.Len(), ShouldEqual, 2)
				_, ok := res.Dataset.Events[0].Metric()
				So(ok, ShouldBeFalse)
				So(res.Warnings, ShouldBeEmpty)
			})
		})

		Convey("When a shot row also carries an xT value", func() {
			res, err := load("x,y,event_type,xg,xT\n100,40,shot,0.3,0.9\n")

			Convey("Then the foreign metric is dropped", func() {
				So(err, ShouldBeNil)
				So(res.Dataset.Events[0].XT, ShouldBeNil)
				So(*res.Dataset.Events[0].XG, ShouldEqual, 0.3)
			})
		})

		Convey("When options name the source and clock", func() {
			at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			res, err := load("x,y,event_type\n1,1,pass\n",
				ingest.WithSource("match.csv"),
				ingest.WithUploaded(true),
				ingest.WithClock(func() time.Time { return at }))

			Convey("Then the dataset carries them", func() {
				So(err, ShouldBeNil)
				So(res.Dataset.Source, ShouldEqual, "match.csv")
				So(res.Dataset.Uploaded, ShouldBeTrue)
				So(res.Dataset.LoadedAt, ShouldEqual, at)
			})
		})
	})
}

func TestLoad_RowWarnings(t *testing.T) {
	Convey("Given a CSV with some bad rows", t, func() {
		csv := strings.Join([]string{
			"x,y,event_type,xg,xT",
			"88,34,shot,0.45,",
			"130,40,shot,0.2,",
			"abc,40,pass,,0.1",
			"60,40,tackle,,",
			"70,30,pass,,1.5",
			"75,35,shot,high,",
			"80,20,pass,,NaN",
		}, "\n")

		res, err := load(csv)

		Convey("Then valid rows are kept and bad rows are reported", func() {
			So(err, ShouldBeNil)
			So(res.Rows, ShouldEqual, 7)
			So(res.Dataset.Len(), ShouldEqual, 4)
			So(res.Rejected(), ShouldEqual, 3)
			So(len(res.Warnings), ShouldEqual, 5)
		})

		Convey("And out-of-range coordinates reject the row", func() {
			w := res.Warnings[0]
			So(w.Row, ShouldEqual, 2)
			So(w.Rejected, ShouldBeTrue)
			So(w.Reason, ShouldContainSubstring, "out of range")
		})

		Convey("And unparsable coordinates and unknown types reject the row", func() {
			So(res.Warnings[1].Column, ShouldEqual, ingest.ColX)
			So(res.Warnings[1].Rejected, ShouldBeTrue)
			So(res.Warnings[2].Column, ShouldEqual, ingest.ColEventType)
			So(res.Warnings[2].Rejected, ShouldBeTrue)
		})

		Convey("And unusable metrics keep the row with the metric missing", func() {
			So(res.Warnings[3].Column, ShouldEqual, ingest.ColXT)
			So(res.Warnings[3].Rejected, ShouldBeFalse)
			So(res.Warnings[3].String(), ShouldContainSubstring, "row 5 kept")
			So(res.Warnings[4].Column, ShouldEqual, ingest.ColXG)
			_, ok := res.Dataset.Events[1].Metric()
			So(ok, ShouldBeFalse)
		})

		Convey("And NaN metrics are treated as missing without a warning", func() {
			last := res.Dataset.Events[3]
			So(last.Row, ShouldEqual, 7)
			So(last.XT, ShouldBeNil)
		})
	})

	Convey("Given a custom pitch", t, func() {
		res, err := load("x,y,event_type\n100,60,shot\n110,60,shot\n",
			ingest.WithPitch(model.Pitch{Length: 105, Width: 68}))

		Convey("Then range checks follow its geometry", func() {
			So(err, ShouldBeNil)
			So(res.Dataset.Len(), ShouldEqual, 1)
			So(res.Rejected(), ShouldEqual, 1)
		})
	})
}

func TestLoad_ValidationErrors(t *testing.T) {
	Convey("Given files that must be refused", t, func() {
		Convey("When the event_type column is missing", func() {
			_, err := load("x,y,xg\n88,34,0.45\n")

			Convey("Then a ValidationError naming the column is returned", func() {
				So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
				var ve *ingest.ValidationError
				So(errors.As(err, &ve), ShouldBeTrue)
				So(ve.Missing, ShouldResemble, []string{"event_type"})
				So(err.Error(), ShouldContainSubstring, "missing required columns: event_type")
			})
		})

		Convey("When the file is empty", func() {
			_, err := load("")
			So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "empty")
		})

		Convey("When the file has only a header", func() {
			_, err := load("x,y,event_type\n")
			So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "no data rows")
		})

		Convey("When every row is rejected", func() {
			_, err := load("x,y,event_type\n500,40,shot\n60,-4,pass\n")

			Convey("Then the error carries the row issues", func() {
				var ve *ingest.ValidationError
				So(errors.As(err, &ve), ShouldBeTrue)
				So(ve.Reason, ShouldEqual, "no valid rows")
				So(len(ve.Issues), ShouldEqual, 2)
			})
		})

		Convey("When the file exceeds the row limit", func() {
			_, err := load("x,y,event_type\n1,1,shot\n2,2,shot\n3,3,shot\n", ingest.WithMaxRows(2))
			So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "more than 2 rows")
		})

		Convey("When quoting is broken", func() {
			_, err := load("x,y,event_type\n1,\"2,shot\n")
			So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "malformed csv")
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ingest.Load(ctx, strings.NewReader("x,y,event_type\n1,1,shot\n"))

		Convey("Then loading stops with the context error", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(errors.Is(err, ingest.ErrValidation), ShouldBeFalse)
		})
	})
}

type brokenReader struct{ after string }

func (b *brokenReader) Read(p []byte) (int, error) {
	if b.after != "" {
		n := copy(p, b.after)
		b.after = b.after[n:]
		return n, nil
	}
	return 0, errors.New("connection reset")
}

func TestLoad_ReaderFailure(t *testing.T) {
	Convey("Given a reader that fails after the header", t, func() {
		_, err := ingest.Load(context.Background(), &brokenReader{after: "x,y,event_type\n1,1,pass\n"})

		Convey("Then the error is not a validation error", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ingest.ErrValidation), ShouldBeFalse)
			So(err.Error(), ShouldContainSubstring, "connection reset")
		})
	})
}
