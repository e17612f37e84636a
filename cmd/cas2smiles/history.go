// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cas2smiles/internal/history"
	"github.com/pdiddy/cas2smiles/internal/table"
	"github.com/pdiddy/cas2smiles/pkg/types"
)

var errNoHistoryDB = errors.New("no history database configured: set --history-db, history.db, or CAS2SMILES_HISTORY_DB")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion runs",
	Long: `History lists runs recorded in the history database, newest first.
Use --run with a run ID to print that run's rows in the output file format.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", history.DefaultLimit, "maximum number of runs to list")
	historyCmd.Flags().String("run", "", "print the rows of one run")
	historyCmd.Flags().Bool("yaml", false, "output runs as YAML")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.DB == "" {
		return errNoHistoryDB
	}

	store, err := history.Open(cfg.History.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		rows, err := store.Rows(ctx, runID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no rows recorded for run %s", runID)
		}
		return table.Encode(out, &types.Table{Rows: rows})
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return history.ExportYAML(out, runs)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-20s  %8s  %9s  %6s  %s\n",
		"Run", "Started", "Resolved", "Not found", "Failed", "Input")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-20s  %8d  %9d  %6d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Resolved, r.NotFound, r.Failed, r.InputPath)
	}
	return nil
}
