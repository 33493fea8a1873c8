package service_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/dingerzone/seatfinder/internal/adapters/mq/publisher"
	"github.com/dingerzone/seatfinder/internal/adapters/stadium"
	"github.com/dingerzone/seatfinder/internal/adapters/storage"
	service "github.com/dingerzone/seatfinder/internal/app"
	"github.com/dingerzone/seatfinder/internal/config"
	"github.com/dingerzone/seatfinder/internal/domain/density"
	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/internal/domain/teams"
	"github.com/dingerzone/seatfinder/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// homeRun builds an event landing at the given spray angle and distance.
func homeRun(id string, spray, dist float64) model.BattedBallEvent {
	rad := spray * math.Pi / 180
	d := dist
	return model.BattedBallEvent{
		ID:          id,
		LaunchSpeed: 104,
		LaunchAngle: 28,
		HcX:         125 + 100*math.Sin(rad),
		HcY:         198 - 100*math.Cos(rad),
		Distance:    &d,
	}
}

type fakeRosters struct {
	err error
}

func (f fakeRosters) Roster(_ context.Context, abbr string) ([]model.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	switch abbr {
	case "NYY":
		return []model.Player{{ID: 1, FullName: "Slugger One", Team: abbr}}, nil
	case "BOS":
		return []model.Player{{ID: 2, FullName: "Slugger Two", Team: abbr}}, nil
	}
	return nil, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	window model.DateWindow
}

func (f *fakeEvents) HomeRuns(_ context.Context, p model.Player, w model.DateWindow) ([]model.BattedBallEvent, error) {
	f.mu.Lock()
	f.window = w
	f.mu.Unlock()
	if p.ID == 1 {
		return []model.BattedBallEvent{
			homeRun("e1", -20, 380),
			homeRun("e2", -22, 385),
			homeRun("e3", -18, 375),
		}, nil
	}
	return []model.BattedBallEvent{
		homeRun("e3", -18, 375),
		homeRun("e4", 25, 400),
		homeRun("e5", 28, 405),
		homeRun("e6", 0, 420),
	}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) Resolve(_ context.Context, name string) (string, error) {
	if name != "Test Park" {
		return "", stadium.ErrUnknownStadium
	}
	return "http://images.test/park.png", nil
}

func (fakeCatalog) List(context.Context) ([]stadium.Stadium, error) {
	return []stadium.Stadium{{Name: "Test Park", ImgLink: "http://images.test/park.png"}}, nil
}

type fakeImages struct {
	fill color.NRGBA
}

func (f fakeImages) Fetch(_ context.Context, name, url string) (*model.StadiumImage, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 450))
	for y := 0; y < 450; y++ {
		for x := 0; x < 400; x++ {
			img.SetNRGBA(x, y, f.fill)
		}
	}
	return model.NewStadiumImage(name, url, img), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publisher.PredictionEvent
	err    error
}

func (f *fakePublisher) PublishPrediction(_ context.Context, ev publisher.PredictionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

var (
	yellow = color.NRGBA{R: 230, G: 200, B: 80, A: 255}
	turf   = color.NRGBA{R: 100, G: 170, B: 100, A: 255}
)

func newService(t *testing.T, fill color.NRGBA, pub *fakePublisher, rosters fakeRosters) (*service.Service, *fakeEvents, string) {
	t.Helper()
	cfg := config.New(context.Background())
	cfg.FetchWorkers = 2
	cfg.FetchDelayMS = 0
	cfg.MinOutputWidth = 400
	cfg.LookbackDays = 30

	dir := t.TempDir()
	events := &fakeEvents{}
	svc := service.New(
		service.WithConfig(cfg),
		service.WithRosterSource(rosters),
		service.WithEventSource(events),
		service.WithCatalog(fakeCatalog{}),
		service.WithImageSource(fakeImages{fill: fill}),
		service.WithSink(storage.NewFileSink(dir)),
		service.WithPublisher(pub),
		service.WithClock(func() time.Time { return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) }),
	)
	return svc, events, dir
}

func TestPredict(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	ctx := context.Background()

	Convey("Given a started service over an all-yellow diagram", t, func() {
		pub := &fakePublisher{}
		svc, events, _ := newService(t, yellow, pub, fakeRosters{})
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a prediction is requested", func() {
			p, err := svc.Predict(ctx, service.Request{
				Team1: "New York Yankees", Team2: "boston red sox", Venue: "Test Park",
			})

			Convey("Then a validated seat is returned and stored", func() {
				So(err, ShouldBeNil)
				So(p.Result.Validated, ShouldBeTrue)
				So(p.Teams, ShouldResemble, [2]string{"NYY", "BOS"})
				So(p.Events, ShouldEqual, 6)
				So(p.Points, ShouldEqual, 6)
				So(p.Name, ShouldEqual, p.ID+".png")
				So(len(p.PNG), ShouldBeGreaterThan, 0)

				rc, err := svc.Artifact(ctx, p.Name)
				So(err, ShouldBeNil)
				data, _ := io.ReadAll(rc)
				_ = rc.Close()
				So(data, ShouldResemble, p.PNG)
			})

			Convey("Then the look-back window ends at the clock", func() {
				So(err, ShouldBeNil)
				So(events.window.End, ShouldEqual, time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC))
				So(events.window.Start, ShouldEqual, time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC))
			})

			Convey("Then a notification is published", func() {
				So(err, ShouldBeNil)
				So(len(pub.events), ShouldEqual, 1)
				So(pub.events[0].ID, ShouldEqual, p.ID)
				So(pub.events[0].Source, ShouldEqual, "seat")
				So(svc.GetStats()["predictions"], ShouldEqual, int64(1))
			})
		})

		Convey("When an artifact name is given", func() {
			p, err := svc.Predict(ctx, service.Request{
				Team1: "New York Yankees", Team2: "Boston Red Sox", Venue: "Test Park",
				ArtifactName: storage.HeatmapName("Test Park"),
			})

			Convey("Then the artifact is stored under it", func() {
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Test_Park_heatmap.png")
			})
		})

		Convey("When both teams are the same", func() {
			_, err := svc.Predict(ctx, service.Request{
				Team1: "Boston Red Sox", Team2: "Boston Red Sox", Venue: "Test Park",
			})

			Convey("Then ErrSameTeams is returned", func() {
				So(errors.Is(err, service.ErrSameTeams), ShouldBeTrue)
				So(svc.GetStats()["failures"], ShouldEqual, int64(1))
			})
		})

		Convey("When a team name is unknown", func() {
			_, err := svc.Predict(ctx, service.Request{
				Team1: "Springfield Isotopes", Team2: "Boston Red Sox", Venue: "Test Park",
			})

			Convey("Then ErrUnknownTeam is returned", func() {
				So(errors.Is(err, teams.ErrUnknownTeam), ShouldBeTrue)
			})
		})

		Convey("When fields are missing", func() {
			_, errTeam := svc.Predict(ctx, service.Request{Team1: "Boston Red Sox", Venue: "Test Park"})
			_, errVenue := svc.Predict(ctx, service.Request{Team1: "Boston Red Sox", Team2: "New York Yankees"})

			Convey("Then the request is rejected", func() {
				So(errors.Is(errTeam, service.ErrMissingTeam), ShouldBeTrue)
				So(errors.Is(errVenue, service.ErrMissingVenue), ShouldBeTrue)
			})
		})

		Convey("When the venue is unknown", func() {
			_, err := svc.Predict(ctx, service.Request{
				Team1: "New York Yankees", Team2: "Boston Red Sox", Venue: "Nowhere Field",
			})

			Convey("Then ErrUnknownStadium is returned", func() {
				So(errors.Is(err, stadium.ErrUnknownStadium), ShouldBeTrue)
			})
		})

		Convey("When stadiums and teams are listed", func() {
			names, err := svc.Stadiums(ctx)

			Convey("Then catalog and club names are returned", func() {
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{"Test Park"})
				So(len(svc.Teams()), ShouldEqual, 30)
			})
		})
	})

	Convey("Given a diagram with no seating colours", t, func() {
		pub := &fakePublisher{}
		svc, _, _ := newService(t, turf, pub, fakeRosters{})
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a prediction is requested", func() {
			p, err := svc.Predict(ctx, service.Request{
				Team1: "New York Yankees", Team2: "Boston Red Sox", Venue: "Test Park",
			})

			Convey("Then the densest point is returned as a best-effort result", func() {
				So(err, ShouldBeNil)
				So(p.Result.Validated, ShouldBeFalse)
				So(p.Result.Source(), ShouldEqual, "fallback")
				So(svc.GetStats()["fallbacks"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given a roster source that fails", t, func() {
		svc, _, _ := newService(t, yellow, &fakePublisher{}, fakeRosters{err: errors.New("upstream down")})
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then Predict returns the wrapped error", func() {
			_, err := svc.Predict(ctx, service.Request{
				Team1: "New York Yankees", Team2: "Boston Red Sox", Venue: "Test Park",
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "roster NYY")
		})
	})

	Convey("Given a publisher that fails", t, func() {
		svc, _, _ := newService(t, yellow, &fakePublisher{err: errors.New("broker down")}, fakeRosters{})
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the prediction still succeeds", func() {
			p, err := svc.Predict(ctx, service.Request{
				Team1: "New York Yankees", Team2: "Boston Red Sox", Venue: "Test Park",
			})
			So(err, ShouldBeNil)
			So(p.Result.Validated, ShouldBeTrue)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc, _, _ := newService(t, yellow, &fakePublisher{}, fakeRosters{})

		Convey("Then Predict reports ErrNotStarted", func() {
			_, err := svc.Predict(ctx, service.Request{Team1: "a", Team2: "b", Venue: "c"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})
}

func TestTooFewEvents(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	ctx := context.Background()

	Convey("Given rosters with no players", t, func() {
		cfg := config.New(ctx)
		cfg.FetchDelayMS = 0
		svc := service.New(
			service.WithConfig(cfg),
			service.WithRosterSource(emptyRosters{}),
			service.WithEventSource(&fakeEvents{}),
			service.WithCatalog(fakeCatalog{}),
			service.WithImageSource(fakeImages{fill: yellow}),
			service.WithSink(storage.NewFileSink(t.TempDir())),
			service.WithPublisher(&fakePublisher{}),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the density fit reports too few points", func() {
			_, err := svc.Predict(ctx, service.Request{
				Team1: "New York Yankees", Team2: "Boston Red Sox", Venue: "Test Park",
			})
			So(errors.Is(err, density.ErrTooFewPoints), ShouldBeTrue)
		})
	})
}

type emptyRosters struct{}

func (emptyRosters) Roster(context.Context, string) ([]model.Player, error) { return nil, nil }

func TestNewSink(t *testing.T) {
	Convey("Given storage backends", t, func() {
		cfg := config.New(context.Background())

		Convey("Then file builds a FileSink", func() {
			cfg.OutputDir = t.TempDir()
			sink, err := service.NewSink(cfg)
			So(err, ShouldBeNil)
			So(sink.Backend(), ShouldEqual, "file")
		})

		Convey("Then minio builds a MinioSink", func() {
			cfg.StorageBackend = config.StorageMinio
			cfg.MinioEndpoint = "localhost:9000"
			sink, err := service.NewSink(cfg)
			So(err, ShouldBeNil)
			So(sink.Backend(), ShouldEqual, "minio")
		})

		Convey("Then unknown backends are rejected", func() {
			cfg.StorageBackend = "tape"
			_, err := service.NewSink(cfg)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
