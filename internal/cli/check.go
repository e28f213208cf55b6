// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/storage"
	"github.com/creachadair/jdom/value"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func newCheckCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] FILE...",
		Short: "Check the syntax of JSON files",
		Long: `Check parses each named file as a single JSON value, and reports its kind
and location or the first error. Files are parsed concurrently, each into its
own arena.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cfg, cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().IntVar(&cfg.Jobs, flagJobs, cfg.Jobs, "number of files to parse concurrently")
	cmd.Flags().BoolVar(&cfg.Metrics, flagMetrics, cfg.Metrics, "print arena metrics after checking")
	return cmd
}

// A checkResult records the outcome of checking one file. The value and
// its arena are kept until the results have been reported.
type checkResult struct {
	path string
	v    value.Value
	loc  jdom.Location
	err  error
}

func (r *checkResult) String() string {
	if r.err != nil {
		return fmt.Sprintf("%s: %v", r.path, r.err)
	}
	return fmt.Sprintf("%s: ok: %v at %s", r.path, r.v.Kind(), r.loc)
}

func runCheck(ctx context.Context, cfg *Config, out io.Writer, paths []string) error {
	logger := loggerFromContext(ctx)
	col := storage.NewCollector()

	pool, err := ants.NewPool(cfg.Jobs)
	if err != nil {
		return errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	results := make([]checkResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		results[i].path = path
		arena := storage.NewMonotonic(cfg.BlockSize, nil)
		col.Track(path, arena)

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			sp := storage.Share(arena)
			defer sp.Release()

			r := &results[i]
			r.v, r.loc, r.err = parseFile(ctx, cfg, path, sp)
			logger.Debug("checked file", "file", path, "arena", arena, "err", r.err)
		})
		if err != nil {
			wg.Done()
			results[i].err = errors.Wrap(err, "submit")
		}
	}
	wg.Wait()

	var nfail int
	for i := range results {
		if results[i].err != nil {
			nfail++
		}
		fmt.Fprintln(out, results[i].String())
	}
	if cfg.Metrics {
		if err := writeMetrics(out, col); err != nil {
			return err
		}
	}
	for i := range results {
		results[i].v.Release()
		col.Untrack(results[i].path)
	}
	if nfail != 0 {
		return errors.Errorf("%d of %d files failed", nfail, len(paths))
	}
	return nil
}

// writeMetrics writes the current metrics of col to w in the Prometheus
// text exposition format.
func writeMetrics(w io.Writer, col prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(col); err != nil {
		return errors.Wrap(err, "register metrics")
	}
	mfs, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrap(err, "encode metrics")
		}
	}
	return nil
}
