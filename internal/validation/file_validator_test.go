package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

func TestFileValidator_ValidateSize(t *testing.T) {
	v := NewFileValidator(nil, SizePolicy{MinBytes: 1, MaxBytes: 100})

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{name: "empty file", size: 0, wantErr: true},
		{name: "minimum", size: 1},
		{name: "at ceiling", size: 100},
		{name: "over ceiling", size: 101, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSize(domain.FileDescriptor{Name: "Acme_X_202401.csv", ByteSize: tt.size})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
			assert.Contains(t, err.Error(), "Acme_X_202401.csv")
		})
	}
}

func TestFileValidator_ValidateFile(t *testing.T) {
	v := NewFileValidator(nil, SizePolicy{})
	dir := t.TempDir()

	file := filepath.Join(dir, "Acme_X_202401.csv")
	require.NoError(t, os.WriteFile(file, []byte("Date,Documents\n"), 0644))

	assert.NoError(t, v.ValidateFile(file))
	assert.ErrorContains(t, v.ValidateFile(filepath.Join(dir, "missing.csv")), "does not exist")
	assert.ErrorContains(t, v.ValidateFile(dir), "is a directory")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil, SizePolicy{})
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestIsTemporaryFile(t *testing.T) {
	assert.True(t, IsTemporaryFile("~$Acme_X_202401.xlsx"))
	assert.True(t, IsTemporaryFile("/tmp/~$lock.xlsx"))
	assert.False(t, IsTemporaryFile("Acme_X_202401.xlsx"))
}
