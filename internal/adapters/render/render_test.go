package render_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dingerzone/seatfinder/internal/adapters/render"
	"github.com/dingerzone/seatfinder/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var turf = color.NRGBA{R: 100, G: 170, B: 100, A: 255}

func diagram(w, h int) *model.StadiumImage {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, turf)
		}
	}
	return model.NewStadiumImage("Test Park", "", img)
}

func TestRender(t *testing.T) {
	Convey("Given a small diagram and a validated result", t, func() {
		rd := render.New(render.WithMinWidth(800), render.WithMarkerRadius(8))
		img := diagram(400, 450)
		res := model.BestSeatResult{X: -100, Y: 225, Validated: true}

		Convey("When rendered", func() {
			data, err := rd.Render(img, res, render.Title("Test Park"))

			Convey("Then the PNG is upscaled to the minimum width", func() {
				So(err, ShouldBeNil)
				out, err := png.Decode(bytes.NewReader(data))
				So(err, ShouldBeNil)
				So(out.Bounds().Dx(), ShouldEqual, 800)
				So(out.Bounds().Dy(), ShouldEqual, 900+28)
			})
		})

		Convey("When composed", func() {
			canvas := rd.Compose(img, res, "t")

			Convey("Then the marker sits at the mapped field position", func() {
				// x=-100 is a quarter across, y=225 is half way down the field.
				c := canvas.NRGBAAt(200, 28+450)
				So(c, ShouldResemble, color.NRGBA{R: 31, G: 119, B: 180, A: 255})
			})

			Convey("Then the field outside the marker keeps the diagram colour", func() {
				c := canvas.NRGBAAt(600, 28+800)
				So(int(c.R), ShouldAlmostEqual, int(turf.R), 1)
				So(int(c.G), ShouldAlmostEqual, int(turf.G), 1)
				So(int(c.B), ShouldAlmostEqual, int(turf.B), 1)
			})

			Convey("Then the title band is drawn above the field", func() {
				So(canvas.NRGBAAt(2, 2), ShouldResemble, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			})
		})
	})

	Convey("Given a diagram wider than the minimum", t, func() {
		data, err := render.New(render.WithMinWidth(100)).Render(diagram(200, 150), model.BestSeatResult{}, "x")
		So(err, ShouldBeNil)
		out, err := png.Decode(bytes.NewReader(data))
		So(err, ShouldBeNil)
		So(out.Bounds().Dx(), ShouldEqual, 200)
	})

	Convey("Given no image", t, func() {
		_, err := render.New().Render(nil, model.BestSeatResult{}, "x")
		So(errors.Is(err, render.ErrNoImage), ShouldBeTrue)
	})

	Convey("Given fallback and validated results", t, func() {
		So(render.Legend(model.BestSeatResult{Validated: true}), ShouldEqual, "Best Seat Zone")
		So(render.Legend(model.BestSeatResult{}), ShouldEqual, "Best Seat Zone (best effort)")
		So(render.Title("Fenway Park"), ShouldEqual, "Best Seat Zone at Fenway Park")
	})
}
