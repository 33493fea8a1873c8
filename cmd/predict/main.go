// Command predict runs one best-seat prediction and writes
// <Stadium_Name>_heatmap.png to the configured sink.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dingerzone/seatfinder/internal/adapters/storage"
	app "github.com/dingerzone/seatfinder/internal/app"
	"github.com/dingerzone/seatfinder/internal/config"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

const usage = `usage: predict [flags] <TEAM1> <TEAM2> <STADIUM>

TEAM1 and TEAM2 are full club names, e.g. "New York Yankees".
STADIUM must be present in the stadium catalog.
`

var errUsage = errors.New("expected three arguments")

func main() {
	outDir := flag.String("out", "", "output directory for the file backend (overrides output_dir)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Args(), *outDir, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		os.Stderr.WriteString("predict: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, outDir string, stdout io.Writer) error {
	req, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	svc := app.New(app.WithConfig(cfg), app.WithLogger(logger.Named("predict")))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	p, err := svc.Predict(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "best seat at x=%.1f ft, y=%.1f ft (%s)\n", p.Result.X, p.Result.Y, p.Result.Source())
	fmt.Fprintf(stdout, "%d home runs, %d in play region\n", p.Events, p.Points)
	fmt.Fprintln(stdout, p.Location)
	return nil
}

// parseArgs builds the request; the artifact is named after the stadium.
func parseArgs(args []string) (app.Request, error) {
	if len(args) != 3 {
		return app.Request{}, fmt.Errorf("%w, got %d", errUsage, len(args))
	}
	venue := strings.TrimSpace(args[2])
	return app.Request{
		Team1:        args[0],
		Team2:        args[1],
		Venue:        venue,
		ArtifactName: storage.HeatmapName(venue),
	}, nil
}
