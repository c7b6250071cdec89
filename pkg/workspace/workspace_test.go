package workspace_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/workspace"
)

func TestEnsure_CreatesLayout(t *testing.T) {
	root := t.TempDir()

	w, err := workspace.Ensure(root, "sess-1")
	require.NoError(t, err)

	for _, dir := range []string{w.SkillsPath(), w.UploadsPath(), w.OutputsPath(), w.TempPath()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	_, err = os.Stat(filepath.Join(w.Root, ".metadata.json"))
	assert.NoError(t, err)
}

func TestEnsure_IsIdempotent(t *testing.T) {
	root := t.TempDir()

	w1, err := workspace.Ensure(root, "sess-1")
	require.NoError(t, err)

	marker := filepath.Join(w1.UploadsPath(), "keep.txt")
	require.NoError(t, os.WriteFile(marker, []byte("data"), 0o644))

	w2, err := workspace.Ensure(root, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, w1.Root, w2.Root)

	_, err = os.Stat(marker)
	assert.NoError(t, err)
}

func TestMountSkill_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Ensure(root, "sess-1")
	require.NoError(t, err)

	skillSrc := filepath.Join(root, "library", "weather")
	require.NoError(t, os.MkdirAll(skillSrc, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillSrc, "SKILL.md"), []byte("id: weather\nname: Weather\n"), 0o644))

	require.NoError(t, workspace.MountSkill(w, "weather", skillSrc))
	require.NoError(t, workspace.MountSkill(w, "weather", skillSrc))

	_, err = os.Lstat(filepath.Join(w.SkillsPath(), "weather"))
	assert.NoError(t, err)
}

func TestCleanup_RemovesOnlyStaleWorkspaces(t *testing.T) {
	root := t.TempDir()

	fresh, err := workspace.Ensure(root, "fresh")
	require.NoError(t, err)

	stale, err := workspace.Ensure(root, "stale")
	require.NoError(t, err)

	staleMeta := filepath.Join(stale.Root, ".metadata.json")
	old := time.Now().UTC().AddDate(0, 0, -10)
	require.NoError(t, os.WriteFile(staleMeta,
		[]byte(`{"session_id":"stale","created_at":"`+old.Format(time.RFC3339)+`","updated_at":"`+old.Format(time.RFC3339)+`"}`),
		0o644))

	removed, err := workspace.Cleanup(root, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale.Root)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(fresh.Root)
	assert.NoError(t, err)
}

func TestCleanup_MissingRootIsNotAnError(t *testing.T) {
	removed, err := workspace.Cleanup(filepath.Join(t.TempDir(), "nope"), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
