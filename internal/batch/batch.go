// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives a conversion: load the compound table, resolve each
// CAS number in order, and write the augmented table.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/cas2smiles/internal/history"
	"github.com/pdiddy/cas2smiles/internal/table"
	"github.com/pdiddy/cas2smiles/pkg/types"
)

// Resolver turns one CAS number into a lookup result. Implementations must
// not fail past this boundary.
type Resolver interface {
	Resolve(ctx context.Context, cas string) types.Result
}

// Recorder persists a finished run. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run *history.Run, t *types.Table) error
}

// Result holds the per-kind counts of a batch run.
type Result struct {
	Resolved int
	NotFound int
	Failed   int
}

// Total returns the number of rows processed.
func (r Result) Total() int {
	return r.Resolved + r.NotFound + r.Failed
}

// HasFailures reports whether any lookup failed at the network level.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Run resolves every row of t in order, one lookup at a time, storing each
// result on its row. It waits cfg.Delay between consecutive lookups and
// prints a status line per row and a summary to w. A failed row never stops
// the rows after it. If ctx is cancelled, the remaining rows are marked
// failed with the context error.
func Run(ctx context.Context, r Resolver, t *types.Table, cfg types.LookupConfig, w io.Writer) Result {
	var result Result
	for i := range t.Rows {
		row := &t.Rows[i]

		if i > 0 && cfg.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Delay):
			}
		}

		if err := ctx.Err(); err != nil {
			row.Result = types.NetworkError(err.Error())
		} else {
			row.Result = r.Resolve(ctx, row.CAS)
		}

		switch row.Result.Kind {
		case types.ResultSMILES:
			fmt.Fprintf(w, "resolved:  %s (%s)\n", row.CAS, row.Name)
			result.Resolved++
		case types.ResultNotFound:
			fmt.Fprintf(w, "not found: %s (%s)\n", row.CAS, row.Name)
			result.NotFound++
		default:
			fmt.Fprintf(w, "failed:    %s (%s)\n", row.CAS, row.Result.Detail)
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d resolved, %d not found, %d failed (total: %d)\n",
		result.Resolved, result.NotFound, result.Failed, result.Total())
	return result
}

// Options configures Convert.
type Options struct {
	// InputPath is the compound list to convert.
	InputPath string

	// Format selects spreadsheet or delimited parsing.
	Format types.InputFormat

	// Lookup carries the inter-request delay.
	Lookup types.LookupConfig

	// Resolver performs the lookups.
	Resolver Resolver

	// Recorder, when non-nil, receives the finished run.
	Recorder Recorder

	// Out receives per-row status lines. Nil discards them.
	Out io.Writer
}

// Outcome describes a finished conversion.
type Outcome struct {
	OutputPath string
	Rows       int
	Result     Result

	// RunID is set when the run was recorded in history.
	RunID string
}

// Convert loads opts.InputPath, resolves every row, and writes the output
// file next to the input. Load and write failures are returned; lookup
// failures are recorded per row. A history failure is logged, not returned,
// because the output file already exists by then.
func Convert(ctx context.Context, opts Options) (Outcome, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	started := time.Now()

	t, err := table.Load(opts.InputPath, opts.Format)
	if err != nil {
		return Outcome{}, err
	}
	slog.Debug("loaded table", "path", opts.InputPath, "format", opts.Format, "rows", t.Len())

	result := Run(ctx, opts.Resolver, t, opts.Lookup, out)

	outputPath := table.OutputPath(opts.InputPath)
	if err := table.Write(outputPath, t); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{OutputPath: outputPath, Rows: t.Len(), Result: result}

	if opts.Recorder != nil {
		format := opts.Format
		if format == "" {
			format = types.FormatDelimited
		}
		run := &history.Run{
			InputPath:  opts.InputPath,
			OutputPath: outputPath,
			Format:     string(format),
			StartedAt:  started,
			FinishedAt: time.Now(),
			Resolved:   result.Resolved,
			NotFound:   result.NotFound,
			Failed:     result.Failed,
		}
		if err := opts.Recorder.Record(ctx, run, t); err != nil {
			slog.Warn("recording run history failed", "error", err)
		} else {
			outcome.RunID = run.ID
		}
	}

	return outcome, nil
}
