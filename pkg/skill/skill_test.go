package skill_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/skill"
)

func writeManifest(t *testing.T, dir, id, name string) string {
	t.Helper()
	path := filepath.Join(dir, "skill.yaml")
	content := "id: " + id + "\nname: " + name + "\nversion: \"1.0\"\ndescription: test skill\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_RequiresIDAndName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skill.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: missing required fields"), 0o644))

	_, err := skill.Load(path)
	require.Error(t, err)
}

func TestDiscover_FindsOneLevelDeep(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "research")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeManifest(t, sub, "research", "Research Skill")

	skills, err := skill.Discover(root)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "research", skills[0].ID)
	assert.Equal(t, sub, skills[0].Path)
}

func TestDiscover_MissingRootReturnsEmpty(t *testing.T) {
	skills, err := skill.Discover(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, skills)
}

func TestRegistry_GetAndList(t *testing.T) {
	reg := skill.NewRegistry([]skill.Skill{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})

	s, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", s.Name)

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.Len(t, reg.List(), 2)
}
