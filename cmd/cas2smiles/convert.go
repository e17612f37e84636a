// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cas2smiles/internal/batch"
	"github.com/pdiddy/cas2smiles/internal/history"
	"github.com/pdiddy/cas2smiles/internal/pubchem"
	"github.com/pdiddy/cas2smiles/pkg/types"
)

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	out := cmd.OutOrStdout()

	// A missing input is reported, not treated as a failure.
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "File %s not found.\n", inputPath)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := types.FormatDelimited
	if isExcel, _ := cmd.Flags().GetBool("xls"); isExcel {
		format = types.FormatSpreadsheet
	}

	client := &http.Client{
		Timeout: cfg.Lookup.Timeout,
	}

	opts := batch.Options{
		InputPath: inputPath,
		Format:    format,
		Lookup:    cfg.Lookup,
		Resolver:  pubchem.NewResolver(client, cfg.Lookup),
		Out:       cmd.ErrOrStderr(),
	}

	if cfg.History.DB != "" {
		store, err := history.Open(cfg.History.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Recorder = store
	}

	outcome, err := batch.Convert(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Processed file saved to %s\n", outcome.OutputPath)
	return nil
}
