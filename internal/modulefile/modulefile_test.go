package modulefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenManifestMissing(t *testing.T) {
	m, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "main.en", m.Entry)
	require.Empty(t, m.SharedObjects)
}

func TestLoadParsesManifest(t *testing.T) {
	dir := t.TempDir()
	contents := "entry: game.en\nshared_objects:\n  - physics\n  - audio\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(contents), 0o600))

	m, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "game.en", m.Entry)
	require.Equal(t, []string{"physics", "audio"}, m.SharedObjects)
}
