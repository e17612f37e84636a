// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/cas2smiles/pkg/types"
)

// OutputSuffix is appended to the input base name to form the output file name.
const OutputSuffix = "_SMILES.csv"

// OutputPath derives the output file path from the input path: same
// directory, extension removed, OutputSuffix appended.
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + OutputSuffix
}

// Encode writes t as comma-separated Name, CAS, result rows with no header.
func Encode(w io.Writer, t *types.Table) error {
	cw := csv.NewWriter(w)
	for _, row := range t.Rows {
		if err := cw.Write([]string{row.Name, row.CAS, row.Result.String()}); err != nil {
			return fmt.Errorf("writing row %s: %w", row.CAS, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes t to path, creating or replacing the file. The data goes to
// a temporary file in the same directory which is renamed on success.
func Write(path string, t *types.Table) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".cas2smiles-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encErr := Encode(tmpFile, t)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, encErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
