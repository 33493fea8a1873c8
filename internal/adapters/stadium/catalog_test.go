package stadium_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dingerzone/seatfinder/internal/adapters/stadium"
	"github.com/dingerzone/seatfinder/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const seedCSV = `stadium,home_link,img_link
Yankee Stadium II,http://example.test/Yankee2.html,http://example.test/Yankee2.gif
Fenway Park,http://example.test/Fenway.html,http://example.test/Fenway.gif
Polo Grounds,http://example.test/Polo.html,
,http://example.test/blank.html,http://example.test/blank.gif
`

func TestCatalog(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	Convey("Given an in-memory catalog seeded from CSV", t, func() {
		ctx := context.Background()
		c, err := stadium.Open(ctx, ":memory:")
		So(err, ShouldBeNil)
		defer c.Close()

		n, err := c.ImportCSV(ctx, strings.NewReader(seedCSV))
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 3)

		Convey("When resolving a known stadium", func() {
			url, err := c.Resolve(ctx, " Fenway Park ")

			Convey("Then its image link is returned", func() {
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "http://example.test/Fenway.gif")
			})
		})

		Convey("When resolving a stadium without an image", func() {
			_, err := c.Resolve(ctx, "Polo Grounds")

			Convey("Then it is reported as unknown", func() {
				So(errors.Is(err, stadium.ErrUnknownStadium), ShouldBeTrue)
			})
		})

		Convey("When resolving a name not in the catalog", func() {
			_, err := c.Resolve(ctx, "Ebbets Field")

			Convey("Then ErrUnknownStadium is returned", func() {
				So(errors.Is(err, stadium.ErrUnknownStadium), ShouldBeTrue)
			})
		})

		Convey("When listing", func() {
			list, err := c.List(ctx)

			Convey("Then only stadiums with images appear, sorted", func() {
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].Name, ShouldEqual, "Fenway Park")
				So(list[1].Name, ShouldEqual, "Yankee Stadium II")
			})
		})

		Convey("When a row is upserted", func() {
			So(c.Upsert(ctx, stadium.Stadium{Name: "Polo Grounds", ImgLink: "http://example.test/Polo.gif"}), ShouldBeNil)

			Convey("Then the new link resolves", func() {
				url, err := c.Resolve(ctx, "Polo Grounds")
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "http://example.test/Polo.gif")
			})
		})
	})

	Convey("Given CSVs missing required columns", t, func() {
		ctx := context.Background()
		c, err := stadium.Open(ctx, ":memory:")
		So(err, ShouldBeNil)
		defer c.Close()

		_, err = c.ImportCSV(ctx, strings.NewReader("name,img_link\nA,http://x\n"))
		So(errors.Is(err, stadium.ErrBadCSV), ShouldBeTrue)

		_, err = c.ImportCSV(ctx, strings.NewReader("stadium,home_link\nA,http://x\n"))
		So(errors.Is(err, stadium.ErrBadCSV), ShouldBeTrue)

		_, err = c.ImportCSV(ctx, strings.NewReader(""))
		So(errors.Is(err, stadium.ErrBadCSV), ShouldBeTrue)
	})
}
