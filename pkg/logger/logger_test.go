package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { _ = Init() }()

		ctx := context.Background()

		Convey("When logging at info level", func() {
			Get().Info(ctx, "test message", String("k", "v"), Int("n", 3), Bool("ok", true))

			Convey("Then the message and fields are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "test message")
				So(out, ShouldContainSubstring, "k=v")
				So(out, ShouldContainSubstring, "n=3")
				So(out, ShouldContainSubstring, "ok=true")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
			})
		})

		Convey("When the level is raised to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible")

			Convey("Then debug output appears", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})

		Convey("When logging through a named logger", func() {
			Named("pipeline").Warn(ctx, "named message", Float64("x", 1.5))

			Convey("Then fields are grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "pipeline.x=1.5")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known levels are accepted", func() {
			for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", " Info "} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Then unknown levels are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestLeveledAdapter(t *testing.T) {
	Convey("Given a leveled adapter over a buffered logger", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { _ = Init() }()

		adapter := NewLeveled(Get())

		Convey("When logging key/value pairs", func() {
			adapter.Warn("retrying", "url", "http://example.test", "attempt", 2)
			adapter.Error("giving up", "error", errors.New("boom"), "dangling")

			Convey("Then pairs become structured fields", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "url=http://example.test")
				So(out, ShouldContainSubstring, "attempt=2")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "extra=dangling")
				So(strings.Count(out, "\n"), ShouldEqual, 2)
			})
		})
	})
}
