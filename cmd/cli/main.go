// Command ecospeed reads an advisory Input JSON from a file argument (or stdin),
// runs the advisor, and writes the Report to stdout or -out.
//
// A YAML -config file supplies the baseline configuration; a "config" object
// in the input JSON overlays it.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cxd309/ecospeed/internal/config"
	"github.com/cxd309/ecospeed/internal/engine"
	"github.com/cxd309/ecospeed/internal/export"
	"github.com/cxd309/ecospeed/internal/log"
	"github.com/cxd309/ecospeed/internal/store"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "YAML configuration file")
		format  = flag.String("format", "json", "output format: json, xlsx, geojson")
		outPath = flag.String("out", "", "output file (default stdout)")
		speeds  = flag.String("speeds", "", "comma-separated candidate speeds in km/h, e.g. 80,90,100")
		history = flag.String("history", "", "SQLite file to record the run in")
		workers = flag.Int("workers", 0, "candidates evaluated concurrently (default GOMAXPROCS)")
		debug   = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*cfgPath, *format, *outPath, *speeds, *history, *workers); err != nil {
		log.Sync()
		fmt.Fprintf(os.Stderr, "ecospeed: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, format, outPath, speeds, history string, workers int) error {
	var (
		data []byte
		err  error
	)
	if flag.NArg() > 0 {
		data, err = os.ReadFile(flag.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	base := config.Default()
	if cfgPath != "" {
		if base, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	in, err := engine.DecodeInputOver(data, base)
	if err != nil {
		return fmt.Errorf("invalid input JSON: %w", err)
	}
	if speeds != "" {
		parsed, err := config.ParseSpeeds(speeds)
		if err != nil {
			log.Warnw("ignoring invalid -speeds, keeping configured candidates", "error", err)
		} else {
			in.Config.Speeds.Candidates = parsed
		}
	}
	if format == "geojson" {
		in.Config.Breakdown = true
	}

	advisor, err := engine.NewAdvisor(in, engine.WithLogger(log.GetSugaredLogger()), engine.WithWorkers(workers))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	report, err := advisor.Run(ctx)
	if err != nil {
		return err
	}

	if history != "" {
		s, err := store.Open(history)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.SaveReport(ctx, report); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	switch format {
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	case "xlsx":
		err = export.WriteWorkbook(&buf, report)
	case "geojson":
		var gj []byte
		if gj, err = export.BreakdownGeoJSON(report.Breakdown); err == nil {
			buf.Write(gj)
			buf.WriteByte('\n')
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err = buf.WriteTo(os.Stdout)
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
