package service_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	service "github.com/okian/xgxt/internal/app"
	"github.com/okian/xgxt/internal/adapters/session"
	"github.com/okian/xgxt/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given many browsers uploading at once", t, func() {
		ctx := context.Background()
		svc := started(service.WithSessionOptions(session.WithMaxSessions(100)))
		defer svc.Stop()

		const browsers = 16
		ids := make([]string, browsers)
		errs := make([]error, browsers)
		var wg sync.WaitGroup
		for i := range ids {
			ids[i] = session.NewID()
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				var csv strings.Builder
				csv.WriteString("x,y,event_type,xg,xt\n")
				for r := 0; r <= i; r++ {
					fmt.Fprintf(&csv, "%d,%d,pass,,0.1\n", 10+r, 10+r)
				}
				if _, err := svc.Upload(ctx, ids[i], fmt.Sprintf("b%d.csv", i), strings.NewReader(csv.String())); err != nil {
					errs[i] = err
					return
				}
				errs[i] = svc.RenderDataset(ctx, ids[i], view.Default(), &bytes.Buffer{})
			}(i)
		}
		wg.Wait()

		Convey("Then each browser keeps its own dataset", func() {
			for i, id := range ids {
				So(errs[i], ShouldBeNil)
				ds, err := svc.Dataset(ctx, id)
				So(err, ShouldBeNil)
				So(ds.Len(), ShouldEqual, i+1)
				So(ds.Source, ShouldEqual, fmt.Sprintf("b%d.csv", i))
			}
			So(svc.GetStats()["activeSessions"], ShouldEqual, browsers)
		})
	})
}
