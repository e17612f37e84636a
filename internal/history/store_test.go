// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cas2smiles/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTable() *types.Table {
	tbl := types.NewTable()
	tbl.Add(types.Row{Name: "o-Tolylboronic acid", CAS: "16419-60-6", Result: types.Found("Cc1ccccc1B(O)O")})
	tbl.Add(types.Row{Name: "Unobtainium", CAS: "00-00-0", Result: types.NotFound()})
	tbl.Add(types.Row{Name: "Phenol", CAS: "108-95-2", Result: types.NetworkError("HTTP 503 Service Unavailable")})
	return tbl
}

func sampleRun(input string, started time.Time) *Run {
	return &Run{
		InputPath:  input,
		OutputPath: input + "_SMILES.csv",
		Format:     string(types.FormatDelimited),
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Resolved:   1,
		NotFound:   1,
		Failed:     1,
	}
}

// --- tests ---

func TestRecordAssignsID(t *testing.T) {
	s := testStore(t)
	run := sampleRun("a.csv", time.Now())

	require.NoError(t, s.Record(context.Background(), run, sampleTable()))
	assert.Len(t, run.ID, 36)
}

func TestRecordAndRows(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run := sampleRun("a.csv", time.Now())
	require.NoError(t, s.Record(ctx, run, sampleTable()))

	rows, err := s.Rows(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleTable().Rows, rows)
}

func TestRunsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first.csv", "second.csv", "third.csv"} {
		run := sampleRun(name, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Record(ctx, run, sampleTable()))
	}

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third.csv", runs[0].InputPath)
	assert.Equal(t, "first.csv", runs[2].InputPath)
	assert.True(t, runs[2].StartedAt.Equal(base), "started_at = %v", runs[2].StartedAt)
	assert.Equal(t, 1, runs[0].Resolved)

	limited, err := s.Runs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRowsUnknownRun(t *testing.T) {
	s := testStore(t)
	rows, err := s.Rows(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordDuplicateIDFails(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run := sampleRun("a.csv", time.Now())
	run.ID = "fixed-id"
	require.NoError(t, s.Record(ctx, run, sampleTable()))

	again := sampleRun("b.csv", time.Now())
	again.ID = "fixed-id"
	assert.Error(t, s.Record(ctx, again, sampleTable()))

	// The failed transaction must not leave partial rows behind.
	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, sampleRun("a.csv", time.Now()), sampleTable()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestExportYAML(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := sampleRun("a.csv", started)
	run.ID = "run-1"

	var buf bytes.Buffer
	require.NoError(t, ExportYAML(&buf, []Run{*run}))

	var decoded []Run
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "run-1", decoded[0].ID)
	assert.Equal(t, "a.csv_SMILES.csv", decoded[0].OutputPath)
	assert.True(t, decoded[0].StartedAt.Equal(started))
	assert.Contains(t, buf.String(), "input_path: a.csv")
}
