// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// --- test helpers ---

func pubchemStub(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/16419-60-6/"):
			fmt.Fprint(w, `{"PropertyTable":{"Properties":[{"CID":2733946,"IsomericSMILES":"Cc1ccccc1B(O)O"}]}}`)
		default:
			fmt.Fprint(w, `{"PropertyTable":{"Properties":[]}}`)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// resetFlags restores every flag of cmd and its subcommands to its default
// so a later command sees no leftovers from an earlier one.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(t, sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(t, rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(normalizeArgs(args))
	err := rootCmd.Execute()
	return out.String(), err
}

// --- tests ---

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"legacy flag", []string{"input.xls", "-xls"}, []string{"input.xls", "--xls"}},
		{"flag first", []string{"-xls", "input.xls"}, []string{"--xls", "input.xls"}},
		{"long flag untouched", []string{"input.xls", "--xls"}, []string{"input.xls", "--xls"}},
		{"no flag", []string{"input.csv"}, []string{"input.csv"}},
		{"similar name untouched", []string{"-xlsx"}, []string{"-xlsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.in))
		})
	}
}

func TestMissingInputFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.csv")

	out, err := execute(t, missing)
	require.NoError(t, err)
	assert.Equal(t, "File "+missing+" not found.\n", out)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(missing), "absent_SMILES.csv"))
}

func TestConvertDelimitedEndToEnd(t *testing.T) {
	ts := pubchemStub(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "compounds.csv")
	require.NoError(t, os.WriteFile(input, []byte("o-Tolylboronic acid,16419-60-6\nUnobtainium,00-00-0\n"), 0o644))
	dbPath := filepath.Join(dir, "history.db")

	out, err := execute(t, input, "--base-url", ts.URL, "--delay", "0s", "--history-db", dbPath)
	require.NoError(t, err)

	outputPath := filepath.Join(dir, "compounds_SMILES.csv")
	assert.Equal(t, "Processed file saved to "+outputPath+"\n", out)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t,
		"o-Tolylboronic acid,16419-60-6,Cc1ccccc1B(O)O\n"+
			"Unobtainium,00-00-0,CAS number not found or SMILES not available\n",
		string(data))

	out, err = execute(t, "history", "--history-db", dbPath, "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "input_path: "+input)
	assert.Contains(t, out, "resolved: 1")
}

func TestConvertSpreadsheetEndToEnd(t *testing.T) {
	ts := pubchemStub(t)
	dir := t.TempDir()

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "o-Tolylboronic acid"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "16419-60-6"))
	input := filepath.Join(dir, "compounds.xlsx")
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	_, err := execute(t, input, "-xls", "--base-url", ts.URL, "--delay", "0s")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "compounds_SMILES.csv"))
	require.NoError(t, err)
	assert.Equal(t, "o-Tolylboronic acid,16419-60-6,Cc1ccccc1B(O)O\n", string(data))
}

func TestHistoryRequiresDatabase(t *testing.T) {
	_, err := execute(t, "history")
	assert.ErrorIs(t, err, errNoHistoryDB)
}

func TestFlagsDoNotLeakBetweenCommands(t *testing.T) {
	t.Run("first command", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "absent.xlsx")
		_, err := execute(t, missing, "-xls", "--base-url", "http://127.0.0.1:1",
			"--history-db", filepath.Join(t.TempDir(), "history.db"), "--timeout", "5s")
		require.NoError(t, err)
	})

	xls, err := rootCmd.Flags().GetBool("xls")
	require.NoError(t, err)
	assert.False(t, xls)
	assert.False(t, rootCmd.Flags().Changed("base-url"))
	assert.Equal(t, "", viper.GetString("history.db"))
	assert.Equal(t, "https://pubchem.ncbi.nlm.nih.gov/rest/pug", viper.GetString("lookup.base_url"))
	assert.Zero(t, viper.GetDuration("lookup.timeout"))
}

func TestHelpShowsSpreadsheetLayout(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "columns A and B, no header")
	assert.Contains(t, rootCmd.Long, "cas2smiles input.xlsx -xls")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cas2smiles dev\n", out)
}
