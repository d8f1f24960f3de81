package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/converge/internal/entity"
	"github.com/roach88/converge/internal/store"
)

// writeDesiredState writes a YAML desired-state document to a temp file.
func writeDesiredState(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "desired.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

// seedTestStore creates a temp store seeded with the given records.
func seedTestStore(t *testing.T, entities []entity.Entity) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "remote.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	if len(entities) > 0 {
		require.NoError(t, st.Seed(context.Background(), entities))
	}
	return dbPath
}

func TestPlanDriftText(t *testing.T) {
	localPath := writeDesiredState(t, "entities:\n  - id: alpha\n  - id: charlie\n")
	dbPath := seedTestStore(t, []entity.Entity{
		{ID: "bravo"},
		{ID: "charlie"},
		{ID: "charlie"},
	})

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewPlanCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--local", localPath, "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	g := goldie.New(t)
	g.Assert(t, "golden/plan_drift", buf.Bytes())
}

func TestPlanConvergedText(t *testing.T) {
	localPath := writeDesiredState(t, "entities:\n  - id: alpha\n  - id: bravo\n")
	dbPath := seedTestStore(t, []entity.Entity{
		{ID: "alpha"},
		{ID: "bravo"},
	})

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewPlanCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--local", localPath, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "golden/plan_converged", buf.Bytes())
}

func TestPlanDriftJSON(t *testing.T) {
	localPath := writeDesiredState(t, "entities:\n  - id: alpha\n  - id: charlie\n")
	dbPath := seedTestStore(t, []entity.Entity{
		{ID: "bravo"},
		{ID: "charlie"},
		{ID: "charlie"},
	})

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewPlanCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--local", localPath, "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   PlanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Converged)
	assert.Equal(t, 2, resp.Data.Local)
	assert.Equal(t, 3, resp.Data.Remote)
	assert.Equal(t, 1, resp.Data.Additions)
	assert.Equal(t, 2, resp.Data.Deletions)

	require.Len(t, resp.Data.Instructions, 3)
	assert.Equal(t, InstructionView{Op: "add", ID: "alpha"}, resp.Data.Instructions[0])
	assert.Equal(t, "delete", resp.Data.Instructions[1].Op)
	assert.Equal(t, "bravo", resp.Data.Instructions[1].ID)
	assert.Equal(t,
		"dc82e28c248d5f8396a827f66272b240c402bc3d7c886d52372249f5627d41c8",
		resp.Data.Instructions[1].Fingerprint)
	assert.Equal(t, "delete", resp.Data.Instructions[2].Op)
	assert.Equal(t, "charlie", resp.Data.Instructions[2].ID)
}

func TestPlanConvergedJSON(t *testing.T) {
	localPath := writeDesiredState(t, "entities:\n  - id: alpha\n")
	dbPath := seedTestStore(t, []entity.Entity{{ID: "alpha"}})

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewPlanCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--local", localPath, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   PlanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Converged)
	assert.Empty(t, resp.Data.Instructions)
}

func TestPlanMissingLocalPath(t *testing.T) {
	dbPath := seedTestStore(t, nil)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewPlanCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--local", "/nonexistent/desired.yaml", "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, buf.String(), "not found")
}

func TestPlanDuplicateDesiredIDs(t *testing.T) {
	localPath := writeDesiredState(t, "entities:\n  - id: alpha\n  - id: alpha\n")
	dbPath := seedTestStore(t, nil)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewPlanCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--local", localPath, "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "INVALID_STATE")
}

func TestPlanRequiresFlags(t *testing.T) {
	cmd := NewPlanCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
