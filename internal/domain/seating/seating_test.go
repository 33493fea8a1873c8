package seating_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/internal/domain/seating"
	. "github.com/smartystreets/goconvey/convey"
)

func rgb(r, g, b uint8) color.NRGBA { return color.NRGBA{R: r, G: g, B: b, A: 255} }

// uniform returns a w×h diagram filled with c.
func uniform(w, h int, c color.NRGBA) *model.StadiumImage {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return model.NewStadiumImage("test", "", img)
}

func TestClassifyColor(t *testing.T) {
	Convey("Given sample pixels", t, func() {
		cases := []struct {
			col    color.NRGBA
			seat   bool
			reason string
		}{
			{rgb(100, 170, 100), false, seating.ReasonTurf},
			{rgb(140, 145, 150), false, seating.ReasonWalkway},
			{rgb(180, 171, 162), false, seating.ReasonWalkway},
			{rgb(230, 200, 80), true, seating.ReasonYellow},
			{rgb(230, 150, 40), true, seating.ReasonOrange},
			{rgb(240, 150, 170), true, seating.ReasonPink},
			{rgb(20, 20, 200), false, seating.ReasonUnmatched},
			{rgb(150, 140, 150), false, seating.ReasonUnmatched},
			{rgb(99, 100, 101), false, seating.ReasonUnmatched},
		}

		for _, tc := range cases {
			seat, reason := seating.ClassifyColor(tc.col)
			So(reason, ShouldEqual, tc.reason)
			So(seat, ShouldEqual, tc.seat)
		}
	})

	Convey("Given a custom table whose first band matches everything", t, func() {
		c := seating.NewClassifier(seating.WithBands([]seating.Band{
			{Name: "negative", R: seating.Range{0, 255}, G: seating.Range{0, 255}, B: seating.Range{0, 255}},
			{Name: seating.ReasonYellow, Seat: true, R: seating.Range{210, 255}, G: seating.Range{180, 230}, B: seating.Range{50, 120}},
		}))

		Convey("Then the first matching band wins", func() {
			v := c.Classify(model.FieldPoint{X: 0, Y: 200}, uniform(10, 10, rgb(230, 200, 80)))
			So(v.Seat, ShouldBeFalse)
			So(v.Reason, ShouldEqual, "negative")
		})
	})
}

func TestExclusionZone(t *testing.T) {
	Convey("Given points around the batter's eye", t, func() {
		So(seating.InExclusionZone(model.FieldPoint{X: 0, Y: 400}), ShouldBeTrue)
		So(seating.InExclusionZone(model.FieldPoint{X: -30, Y: 390}), ShouldBeTrue)
		So(seating.InExclusionZone(model.FieldPoint{X: 30, Y: 440}), ShouldBeTrue)
		So(seating.InExclusionZone(model.FieldPoint{X: 30.5, Y: 400}), ShouldBeFalse)
		So(seating.InExclusionZone(model.FieldPoint{X: 0, Y: 441}), ShouldBeFalse)
	})
}

func TestToPixel(t *testing.T) {
	Convey("Given a 400×450 image", t, func() {
		Convey("Then home plate maps to the bottom center, which is off the last row", func() {
			_, ok := seating.ToPixel(model.FieldPoint{X: 0, Y: 0}, 400, 450)
			So(ok, ShouldBeFalse)
		})

		Convey("Then the top-left corner maps to the origin", func() {
			px, ok := seating.ToPixel(model.FieldPoint{X: -200, Y: 450}, 400, 450)
			So(ok, ShouldBeTrue)
			So(px, ShouldResemble, image.Pt(0, 0))
		})

		Convey("Then the right edge is out of bounds", func() {
			_, ok := seating.ToPixel(model.FieldPoint{X: 200, Y: 300}, 400, 450)
			So(ok, ShouldBeFalse)
		})

		Convey("Then interior points truncate", func() {
			px, ok := seating.ToPixel(model.FieldPoint{X: 10.9, Y: 300.5}, 400, 450)
			So(ok, ShouldBeTrue)
			So(px, ShouldResemble, image.Pt(210, 149))
		})
	})

	Convey("Given a non-square image", t, func() {
		px, ok := seating.ToPixel(model.FieldPoint{X: 100, Y: 225}, 800, 900)
		So(ok, ShouldBeTrue)
		So(px, ShouldResemble, image.Pt(600, 450))
	})
}

func TestClassify(t *testing.T) {
	Convey("Given a yellow diagram", t, func() {
		img := uniform(40, 45, rgb(230, 200, 80))
		c := seating.NewClassifier()

		Convey("When a point is in the exclusion zone", func() {
			v := c.Classify(model.FieldPoint{X: 0, Y: 400}, img)

			Convey("Then it is rejected without sampling", func() {
				So(v.Seat, ShouldBeFalse)
				So(v.Reason, ShouldEqual, seating.ReasonExcluded)
				So(v.Sampled, ShouldBeFalse)
			})
		})

		Convey("When a point is outside the image", func() {
			v := c.Classify(model.FieldPoint{X: 0, Y: 0}, img)

			Convey("Then it is rejected as out of bounds", func() {
				So(v.Seat, ShouldBeFalse)
				So(v.Reason, ShouldEqual, seating.ReasonOutOfBounds)
			})
		})

		Convey("When a point lands on the deck", func() {
			v := c.Classify(model.FieldPoint{X: 100, Y: 225}, img)

			Convey("Then it is a seat with the sampled colour", func() {
				So(v.Seat, ShouldBeTrue)
				So(v.Reason, ShouldEqual, seating.ReasonYellow)
				So(v.Sampled, ShouldBeTrue)
				So(v.Color, ShouldResemble, rgb(230, 200, 80))
				So(v.Pixel, ShouldResemble, image.Pt(30, 22))
			})
		})
	})

	Convey("Given a custom exclusion zone", t, func() {
		c := seating.NewClassifier(seating.WithExclusionZone(seating.Zone{MinX: 90, MaxX: 110, MinY: 340, MaxY: 360}))
		So(c.Excluded(model.FieldPoint{X: 100, Y: 350}), ShouldBeTrue)
		So(c.Excluded(model.FieldPoint{X: 0, Y: 400}), ShouldBeFalse)
	})
}
