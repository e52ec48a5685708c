package view_test

import (
	"net/url"
	"testing"

	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() *model.Dataset {
	return &model.Dataset{Events: []model.Event{
		model.NewShot(102, 34, model.Float(0.85)),
		model.NewPass(60, 40, model.Float(0.08)),
		model.NewShot(94, 20, nil),
	}}
}

func TestModeTransitions(t *testing.T) {
	Convey("Given the default state", t, func() {
		s := view.Default()

		Convey("Then it starts in Simple mode without filter controls", func() {
			So(s.Mode, ShouldEqual, view.Simple)
			c := s.Controls()
			So(c.TypeFilters, ShouldBeFalse)
			So(c.LayerSelect, ShouldBeFalse)
			So(c.ToggleTo, ShouldEqual, view.Professional)
		})

		Convey("When toggled to Professional", func() {
			ds := sample()
			before := ds.Len()
			pro := s.Toggle()

			Convey("Then filter controls appear and the dataset is unchanged", func() {
				So(pro.Mode, ShouldEqual, view.Professional)
				So(pro.Controls().TypeFilters, ShouldBeTrue)
				So(pro.Controls().LayerSelect, ShouldBeTrue)
				So(len(pro.Apply(ds)), ShouldEqual, 3)
				So(ds.Len(), ShouldEqual, before)
			})

			Convey("And toggling again returns to Simple", func() {
				So(pro.Toggle().Mode, ShouldEqual, view.Simple)
				So(s.Mode, ShouldEqual, view.Simple)
			})
		})
	})
}

func TestFiltering(t *testing.T) {
	Convey("Given a Professional state showing only passes", t, func() {
		q := url.Values{}
		q.Set("mode", "professional")
		q.Set("types", "pass")
		q.Set("layer", "heat")
		s := view.FromQuery(q)
		ds := sample()

		Convey("Then only passes are visible", func() {
			visible := s.Apply(ds)
			So(len(visible), ShouldEqual, 1)
			So(visible[0].Type, ShouldEqual, model.Pass)
			So(s.EffectiveLayer(), ShouldEqual, view.Heat)
		})

		Convey("When toggled to Simple the filters stop applying", func() {
			simple := s.Toggle()
			So(len(simple.Apply(ds)), ShouldEqual, 3)
			So(simple.EffectiveLayer(), ShouldEqual, view.Markers)

			Convey("And toggling back restores them", func() {
				So(len(simple.Toggle().Apply(ds)), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a submitted filter form with nothing checked", t, func() {
		q := url.Values{}
		q.Set("mode", "professional")
		q.Set("f", "1")
		s := view.FromQuery(q)

		Convey("Then nothing is visible", func() {
			So(s.Apply(sample()), ShouldBeEmpty)
		})
	})

	Convey("Given repeated and unknown type parameters", t, func() {
		q := url.Values{"mode": {"PROFESSIONAL"}, "types": {"shot", "tackle,Pass"}}
		s := view.FromQuery(q)

		Convey("Then known types are selected and unknown ones ignored", func() {
			So(s.Types[model.Shot], ShouldBeTrue)
			So(s.Types[model.Pass], ShouldBeTrue)
			So(len(s.Types), ShouldEqual, 2)
		})
	})

	Convey("Given an empty query", t, func() {
		s := view.FromQuery(url.Values{})
		So(s, ShouldResemble, view.Default())
	})
}

func TestQueryRoundTrip(t *testing.T) {
	Convey("Given a state with one type and the heat layer", t, func() {
		s := view.State{
			Mode:  view.Professional,
			Types: map[model.EventType]bool{model.Shot: true},
			Layer: view.Heat,
		}

		Convey("Then its query decodes to the same state", func() {
			q := s.Query()
			So(q.Get("types"), ShouldEqual, "shot")
			So(view.FromQuery(q), ShouldResemble, s)
		})
	})

	Convey("Given unknown mode and layer names", t, func() {
		So(view.ParseMode("expert"), ShouldEqual, view.Simple)
		So(view.ParseLayer("contour"), ShouldEqual, view.Markers)
		So(view.Professional.Label(), ShouldEqual, "Professional")
	})
}
