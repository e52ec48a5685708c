package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	service "github.com/okian/xgxt/internal/app"
	"github.com/okian/xgxt/internal/adapters/session"
	"github.com/okian/xgxt/internal/domain/examples"
	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/internal/domain/view"
	"github.com/okian/xgxt/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(&bytes.Buffer{})); err != nil {
		panic(err)
	}
}

func started(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithMaxRows(10), service.WithLogger(logger.Nop()))

		Convey("When it has not been started", func() {
			stats := svc.GetStats()
			_, err := svc.Dataset(context.Background(), "")

			Convey("Then it reports basic stats and refuses work", func() {
				So(stats["started"], ShouldEqual, false)
				So(stats["maxRows"], ShouldEqual, 10)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := started()

		Convey("Then the bundled examples are loaded", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["exampleEvents"], ShouldEqual, 24)
			So(stats["activeSessions"], ShouldEqual, 0)
			So(stats["pitch"], ShouldEqual, "120x80")
		})

		Convey("And starting twice is harmless", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})

		Convey("When stopping the service", func() {
			svc.Stop()
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				err := svc.RenderExample(context.Background(), examples.NameShots, &bytes.Buffer{})
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_Upload(t *testing.T) {
	Convey("Given a started service and a session", t, func() {
		ctx := context.Background()
		svc := started()
		defer svc.Stop()
		sid := session.NewID()

		Convey("When no file has been uploaded", func() {
			ds, err := svc.Dataset(ctx, sid)

			Convey("Then the demo match is active", func() {
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, examples.NameMatch)
				So(ds.Uploaded, ShouldBeFalse)
			})
		})

		Convey("When uploading a single shot", func() {
			res, err := svc.Upload(ctx, sid, "one.csv", strings.NewReader("x,y,event_type,xG,xT\n88,34,shot,0.45,\n"))

			Convey("Then it becomes the active dataset", func() {
				So(err, ShouldBeNil)
				So(res.Dataset.Len(), ShouldEqual, 1)
				ds, err := svc.Dataset(ctx, sid)
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, "one.csv")
				So(ds.Uploaded, ShouldBeTrue)
			})

			Convey("And its marker has the xG as weight", func() {
				fig, err := svc.DatasetFigure(ctx, sid, view.Default())
				So(err, ShouldBeNil)
				So(len(fig.Markers), ShouldEqual, 1)
				So(fig.Markers[0].Type, ShouldEqual, model.Shot)
				So(fig.Markers[0].X, ShouldEqual, 88)
				So(fig.Markers[0].Y, ShouldEqual, 34)
				So(fig.Markers[0].Weight, ShouldEqual, 0.45)
			})

			Convey("And other sessions still see the example", func() {
				ds, err := svc.Dataset(ctx, session.NewID())
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, examples.NameMatch)
			})

			Convey("And a bad follow-up upload keeps it", func() {
				_, err := svc.Upload(ctx, sid, "bad.csv", strings.NewReader("x,y,xg\n1,2,0.1\n"))
				So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
				var verr *ingest.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Missing, ShouldResemble, []string{"event_type"})

				ds, err := svc.Dataset(ctx, sid)
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, "one.csv")
				So(svc.GetStats()["uploadsRejected"], ShouldEqual, int64(1))
			})

			Convey("And reset returns to the example", func() {
				So(svc.Reset(ctx, sid), ShouldBeNil)
				ds, err := svc.Dataset(ctx, sid)
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, examples.NameMatch)
			})
		})

		Convey("When the first upload is invalid", func() {
			_, err := svc.Upload(ctx, sid, "empty.csv", strings.NewReader(""))

			Convey("Then the example stays active", func() {
				So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
				ds, err := svc.Dataset(ctx, sid)
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, examples.NameMatch)
			})
		})

		Convey("When the file exceeds the row limit", func() {
			small := started(service.WithMaxRows(1))
			defer small.Stop()
			_, err := small.Upload(ctx, sid, "big.csv", strings.NewReader("x,y,event_type\n1,1,pass\n2,2,pass\n"))

			Convey("Then it is refused", func() {
				So(errors.Is(err, ingest.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When the session id is malformed", func() {
			_, err := svc.Upload(ctx, "nope", "one.csv", strings.NewReader("x,y,event_type\n1,1,pass\n"))

			Convey("Then the upload fails without a validation error", func() {
				So(errors.Is(err, session.ErrInvalidID), ShouldBeTrue)
				So(errors.Is(err, ingest.ErrValidation), ShouldBeFalse)
			})
		})
	})
}

func TestService_Views(t *testing.T) {
	Convey("Given a started service showing the demo match", t, func() {
		ctx := context.Background()
		svc := started()
		defer svc.Stop()
		before, err := svc.Dataset(ctx, "")
		So(err, ShouldBeNil)
		count := before.Len()

		Convey("When switching from Simple to Professional", func() {
			simple := view.Default()
			pro := simple.Toggle()
			simpleFig, err := svc.DatasetFigure(ctx, "", simple)
			So(err, ShouldBeNil)
			proFig, err := svc.DatasetFigure(ctx, "", pro)
			So(err, ShouldBeNil)

			Convey("Then filters appear and the dataset is unchanged", func() {
				So(simple.Controls().TypeFilters, ShouldBeFalse)
				So(pro.Controls().TypeFilters, ShouldBeTrue)
				So(len(proFig.Markers), ShouldEqual, len(simpleFig.Markers))
				after, _ := svc.Dataset(ctx, "")
				So(after, ShouldEqual, before)
				So(after.Len(), ShouldEqual, count)
			})
		})

		Convey("When Professional mode shows only shots", func() {
			state := view.State{Mode: view.Professional, Types: map[model.EventType]bool{model.Shot: true}, Layer: view.Markers}
			fig, err := svc.DatasetFigure(ctx, "", state)

			Convey("Then passes are hidden", func() {
				So(err, ShouldBeNil)
				So(len(fig.Markers), ShouldEqual, 9)
				for _, m := range fig.Markers {
					So(m.Type, ShouldEqual, model.Shot)
				}
				So(fig.Title, ShouldEqual, "demo-match: 9 of 24 events")
			})
		})

		Convey("When Professional mode asks for the heat layer", func() {
			state := view.Default().Toggle()
			state.Layer = view.Heat
			fig, err := svc.DatasetFigure(ctx, "", state)

			Convey("Then one heat grid per type replaces the markers", func() {
				So(err, ShouldBeNil)
				So(fig.Layers, ShouldHaveLength, 2)
				So(fig.Layers[0].Type, ShouldEqual, model.Shot)
				So(fig.Layers[1].Type, ShouldEqual, model.Pass)
				So(fig.Layers[0].Grid.Events()+fig.Layers[1].Grid.Events(), ShouldEqual, 24)
				So(fig.Markers, ShouldBeEmpty)
			})
		})
	})
}

func TestService_HeatCountsEveryEvent(t *testing.T) {
	Convey("Given an upload where some rows lack their metric", t, func() {
		ctx := context.Background()
		svc := started()
		defer svc.Stop()
		sid := session.NewID()
		csv := "x,y,event_type,xG,xT\n" +
			"10,10,pass,,\n" +
			"110,70,shot,,\n" +
			"60,40,shot,0.9,\n" +
			"61,41,pass,,0.01\n"
		_, err := svc.Upload(ctx, sid, "sparse.csv", strings.NewReader(csv))
		So(err, ShouldBeNil)

		Convey("When Professional mode shows both types as heat", func() {
			state := view.Default().Toggle()
			state.Layer = view.Heat
			fig, err := svc.DatasetFigure(ctx, sid, state)
			So(err, ShouldBeNil)
			So(fig.Layers, ShouldHaveLength, 2)
			shots, passes := fig.Layers[0].Grid, fig.Layers[1].Grid

			Convey("Then every row is counted", func() {
				So(shots.Events(), ShouldEqual, 2)
				So(passes.Events(), ShouldEqual, 2)
				So(shots.Filled()+passes.Filled(), ShouldEqual, 4)
			})

			Convey("And rows without a metric weigh the default", func() {
				v, ok := shots.At(11, 7)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, svc.DefaultWeight(), 1e-9)
				v, ok = passes.At(1, 1)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, svc.DefaultWeight(), 1e-9)
			})

			Convey("And xG and xT sharing a cell stay apart", func() {
				v, _ := shots.At(6, 4)
				So(v, ShouldAlmostEqual, 0.9, 1e-9)
				v, _ = passes.At(6, 4)
				So(v, ShouldAlmostEqual, 0.01, 1e-9)
			})

			Convey("And the rendered figure uses one ramp per type", func() {
				var buf bytes.Buffer
				So(svc.RenderDataset(ctx, sid, state, &buf), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, `class="heat shot"`)
				So(buf.String(), ShouldContainSubstring, `class="heat pass"`)
			})
		})
	})
}

func TestService_InjectedStore(t *testing.T) {
	Convey("Given a service with its own session store", t, func() {
		ctx := context.Background()
		store := session.NewMemoryStore()
		svc := started(service.WithSessionStore(store))
		sid := session.NewID()
		_, err := svc.Upload(ctx, sid, "kept.csv", strings.NewReader("x,y,event_type\n1,1,pass\n"))
		So(err, ShouldBeNil)

		Convey("When the service is stopped and started again", func() {
			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the injected store and its sessions are still used", func() {
				ds, err := svc.Dataset(ctx, sid)
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, "kept.csv")
				So(store.Len(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a service with the built-in store", t, func() {
		ctx := context.Background()
		svc := started()
		sid := session.NewID()
		_, err := svc.Upload(ctx, sid, "gone.csv", strings.NewReader("x,y,event_type\n1,1,pass\n"))
		So(err, ShouldBeNil)

		Convey("When the service is restarted", func() {
			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then its sessions are gone", func() {
				ds, err := svc.Dataset(ctx, sid)
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, examples.NameMatch)
			})
		})
	})
}

func TestService_Render(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := started()
		defer svc.Stop()

		Convey("When rendering each bundled figure twice", func() {
			for _, name := range service.ExampleNames() {
				var a, b bytes.Buffer
				So(svc.RenderExample(ctx, name, &a), ShouldBeNil)
				So(svc.RenderExample(ctx, name, &b), ShouldBeNil)
				So(a.String(), ShouldEqual, b.String())
				So(a.String(), ShouldStartWith, "<?xml")
			}
		})

		Convey("When rendering the active dataset twice", func() {
			var a, b bytes.Buffer
			So(svc.RenderDataset(ctx, "", view.Default(), &a), ShouldBeNil)
			So(svc.RenderDataset(ctx, "", view.Default(), &b), ShouldBeNil)

			Convey("Then the output is identical", func() {
				So(a.Len(), ShouldBeGreaterThan, 0)
				So(a.Bytes(), ShouldResemble, b.Bytes())
			})
		})

		Convey("When the figure name is unknown", func() {
			err := svc.RenderExample(ctx, "pizza", &bytes.Buffer{})

			Convey("Then ErrUnknownFigure is returned", func() {
				So(errors.Is(err, service.ErrUnknownFigure), ShouldBeTrue)
			})
		})

		Convey("When the shots example is built", func() {
			fig, err := svc.ExampleFigure(examples.NameShots)

			Convey("Then it has three labelled markers", func() {
				So(err, ShouldBeNil)
				So(len(fig.Markers), ShouldEqual, 3)
				So(fig.ShowLabels, ShouldBeTrue)
				So(fig.Markers[0].Label, ShouldEqual, "xG: 0.85")
			})
		})

		Convey("When the binned example is built", func() {
			fig, err := svc.ExampleFigure(examples.NameBinned)

			Convey("Then the simulated passes sit faintly over the grid", func() {
				So(err, ShouldBeNil)
				So(fig.Heat, ShouldNotBeNil)
				So(len(fig.Markers), ShouldEqual, examples.SyntheticEvents)
				for _, m := range fig.Markers {
					So(m.Type, ShouldEqual, model.Pass)
					So(m.Opacity, ShouldEqual, 0.2)
					So(m.Radius, ShouldBeLessThan, 1)
				}
			})

			Convey("And each rendering draws them", func() {
				var buf bytes.Buffer
				So(svc.RenderExample(ctx, examples.NameBinned, &buf), ShouldBeNil)
				So(strings.Count(buf.String(), `class="marker pass"`), ShouldEqual, examples.SyntheticEvents)
			})
		})
	})
}

func TestService_Sweep(t *testing.T) {
	Convey("Given a service with a short session TTL", t, func() {
		ctx := context.Background()
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		svc := started(service.WithSessionOptions(session.WithTTL(time.Minute), session.WithClock(clock)))
		defer svc.Stop()
		sid := session.NewID()
		_, err := svc.Upload(ctx, sid, "a.csv", strings.NewReader("x,y,event_type\n1,1,pass\n"))
		So(err, ShouldBeNil)

		Convey("When the session outlives its TTL", func() {
			now = now.Add(2 * time.Minute)

			Convey("Then sweeping removes it and the example returns", func() {
				So(svc.Sweep(ctx), ShouldEqual, 1)
				ds, err := svc.Dataset(ctx, sid)
				So(err, ShouldBeNil)
				So(ds.Source, ShouldEqual, examples.NameMatch)
			})
		})
	})
}
