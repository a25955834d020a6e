package telemetry

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesStableAnonymousID(t *testing.T) {
	fs := afero.NewMemMapFs()

	first, err := LoadConfig(fs, "/data", true)
	require.NoError(t, err)
	assert.True(t, first.Enabled)
	assert.Len(t, first.AnonymousID, 36)

	exists, err := afero.Exists(fs, "/data/telemetry.json")
	require.NoError(t, err)
	assert.True(t, exists)

	second, err := LoadConfig(fs, "/data", false)
	require.NoError(t, err)
	assert.False(t, second.Enabled)
	assert.Equal(t, first.AnonymousID, second.AnonymousID)
}

func TestLoadConfig_CorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/telemetry.json", []byte("{"), 0o600))

	_, err := LoadConfig(fs, "/data", true)
	assert.ErrorContains(t, err, "parse telemetry config")
}
