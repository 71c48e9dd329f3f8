package finder

import (
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T, dirs ...string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	require.NoError(t, fsys.MkdirAll("root", 0o755))
	for _, d := range dirs {
		require.NoError(t, fsys.MkdirAll(fsys.Join("root", d), 0o755))
	}
	return fsys
}

func TestFind_CaseInsensitiveDirectChild(t *testing.T) {
	fsys := tree(t, "Replacement Files")

	got, err := Find(fsys, "root", "replacement files")
	require.NoError(t, err)
	assert.Equal(t, fsys.Join("root", "Replacement Files"), got)
}

func TestFind_PrefersDirectChildOverNested(t *testing.T) {
	fsys := tree(t, "a/weapons", "Weapons")

	got, err := Find(fsys, "root", "WEAPONS")
	require.NoError(t, err)
	assert.Equal(t, fsys.Join("root", "Weapons"), got)
}

func TestFind_ShallowerNestedMatchWins(t *testing.T) {
	fsys := tree(t, "a/b/c/Ships", "z/ships")

	got, err := Find(fsys, "root", "Ships")
	require.NoError(t, err)
	assert.Equal(t, fsys.Join("root", "z", "ships"), got)
}

func TestFind_NoPartialMatch(t *testing.T) {
	fsys := tree(t, "Weapons Pack", "Weapon")

	_, err := Find(fsys, "root", "Weapons")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFind_IgnoresFiles(t *testing.T) {
	fsys := tree(t)
	f, err := fsys.Create("root/Weapons")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Find(fsys, "root", "Weapons")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFind_MissingRoot(t *testing.T) {
	fsys := memfs.New()
	_, err := Find(fsys, "nope", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSimilar(t *testing.T) {
	fsys := tree(t, "Ships Part 2/extra", "Replacement Files/ships part 1 - player", "Other")

	got, err := Similar(fsys, "root", "Ships")
	require.NoError(t, err)
	assert.Equal(t, []string{"Replacement Files/ships part 1 - player", "Ships Part 2"}, got)
}

func TestSimilar_EmptyToken(t *testing.T) {
	got, err := Similar(tree(t, "a"), "root", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
