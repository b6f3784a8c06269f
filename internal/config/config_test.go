package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sepa-export/internal/logging"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	logger := logging.NewMockLogger()

	assert.Empty(t, LoadEnv(logger))

	t.Setenv("SEPA_TEST_FROM_ENV", "")
	require.NoError(t, os.Unsetenv("SEPA_TEST_FROM_ENV"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SEPA_TEST_FROM_ENV=loaded\n"), 0600))

	assert.Equal(t, ".env", LoadEnv(logger))
	assert.Equal(t, "loaded", GetEnv("SEPA_TEST_FROM_ENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SEPA_TEST_UNSET_VARIABLE", "fallback"))
}
