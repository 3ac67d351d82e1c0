package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestDiscovery_FindBatchFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Acme_Billing_202402.xlsx", "b")
	touch(t, dir, "Acme_Billing_202401.xlsx", "a")
	touch(t, dir, "Acme_TPSummary_202401.CSV", "tp")
	touch(t, dir, "~$Acme_Billing_202401.xlsx", "lock")
	touch(t, dir, ".hidden.csv", "x")
	touch(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.xlsx"), 0755))

	found, err := NewDiscovery("").FindBatchFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme_Billing_202401.xlsx", "Acme_Billing_202402.xlsx", "Acme_TPSummary_202401.CSV"}, names(found))
	assert.Equal(t, filepath.Join(dir, "Acme_Billing_202401.xlsx"), found[0].Path)
	assert.Equal(t, int64(1), found[0].Size)
}

func TestDiscovery_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "exports"), 0755))
	touch(t, filepath.Join(base, "exports"), "Acme_Billing_202401.xlsx", "a")

	found, err := NewDiscovery(base).FindBatchFiles("exports")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestDiscovery_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery("").FindBatchFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDiscovery_FindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Acme_Billing_202401.xlsx", "a")
	touch(t, dir, "Acme_Billing_202402.xlsx", "b")
	touch(t, dir, "Acme_Billing_202402.txt", "c")
	touch(t, dir, "Globex_Billing_202401.xlsx", "d")

	found, err := NewDiscovery(dir).FindFilesByPattern("Acme_*")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme_Billing_202401.xlsx", "Acme_Billing_202402.xlsx"}, names(found))

	_, err = NewDiscovery(dir).FindFilesByPattern("[")
	assert.Error(t, err)
}

func TestHasGlob(t *testing.T) {
	assert.True(t, HasGlob("exports/*.xlsx"))
	assert.True(t, HasGlob("Acme_Billing_20240?.xlsx"))
	assert.False(t, HasGlob("exports/Acme_Billing_202401.xlsx"))
}
