// Command extract runs the datasheet parser on local PDFs without any of
// the service machinery, printing one JSON document per input.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/brahma-hq/datasheet-tracker/internal/extract"
	"github.com/brahma-hq/datasheet-tracker/internal/pdfdoc"
)

func main() {
	var (
		outDir   = flag.String("out", "", "write one JSON file per input here instead of stdout")
		parallel = flag.Int("parallel", 4, "number of PDFs decoded concurrently")
		pretty   = flag.Bool("pretty", true, "indent JSON output")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	paths := flag.Args()
	if len(paths) == 0 {
		logger.Error("usage: extract [flags] datasheet.pdf [more.pdf ...]")
		os.Exit(2)
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			logger.Error("cannot create output directory", "dir", *outDir, "error", err)
			os.Exit(1)
		}
	}

	var stdoutMu sync.Mutex
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)

	for _, p := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			doc, err := pdfdoc.Decode(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", p, err)
			}
			rec := extract.Parse(doc)

			var out []byte
			if *pretty {
				out, err = json.MarshalIndent(rec.Flatten(), "", "  ")
			} else {
				out, err = json.Marshal(rec.Flatten())
			}
			if err != nil {
				return fmt.Errorf("marshal %s: %w", p, err)
			}

			logger.Info("extracted", "path", p, "method", rec.Method, "variants", len(rec.Variants))
			if *outDir != "" {
				base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)) + ".json"
				return os.WriteFile(filepath.Join(*outDir, base), out, 0o644)
			}
			stdoutMu.Lock()
			defer stdoutMu.Unlock()
			_, err = fmt.Printf("%s\n", out)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("extract failed", "error", err)
		os.Exit(1)
	}
}
