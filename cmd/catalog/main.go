// Command catalog imports a stadium list CSV (stadium, home_link, img_link)
// into the SQLite catalog and optionally lists its contents.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dingerzone/seatfinder/internal/adapters/stadium"
	"github.com/dingerzone/seatfinder/internal/config"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

func main() {
	defaults := config.New(context.Background())
	dbPath := flag.String("db", defaults.CatalogDB, "catalog database path")
	csvPath := flag.String("csv", "", "stadium CSV to import")
	list := flag.Bool("list", false, "print catalogued stadiums")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(context.Background(), *dbPath, *csvPath, *list, os.Stdout); err != nil {
		os.Stderr.WriteString("catalog: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, dbPath, csvPath string, list bool, stdout io.Writer) error {
	if csvPath == "" && !list {
		return fmt.Errorf("nothing to do: pass -csv and/or -list")
	}

	cat, err := stadium.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		n, err := cat.ImportCSV(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %d stadiums into %s\n", n, dbPath)
	}

	if list {
		stadiums, err := cat.List(ctx)
		if err != nil {
			return err
		}
		for _, s := range stadiums {
			fmt.Fprintf(stdout, "%s\t%s\n", s.Name, s.ImgLink)
		}
	}
	return nil
}
