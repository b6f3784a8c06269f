package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/sepa-export/internal/validation"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPath(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "batch.yaml")
	assert.NoError(t, os.WriteFile(testFile, []byte("batch: {}"), 0600))

	tests := []struct {
		name        string
		path        string
		errContains string
	}{
		{name: "absolute file", path: testFile},
		{name: "absolute directory", path: tmpDir},
		{name: "missing", path: filepath.Join(tmpDir, "nope.yaml"), errContains: "path does not exist"},
		{name: "relative", path: "batch.yaml", errContains: "path must be absolute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.IsValidPath(tt.path)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestIsValidOutputDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	assert.NoError(t, os.WriteFile(file, nil, 0600))

	assert.NoError(t, validation.IsValidOutputDir(dir))
	assert.ErrorContains(t, validation.IsValidOutputDir(file), "not a directory")
	assert.Error(t, validation.IsValidOutputDir(filepath.Join(dir, "missing")))
}
