package files

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edipulse/pkg/contracts/domain"
)

func TestManager_BuildBatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Acme_Billing_202401.xlsx", "primary")
	touch(t, dir, "xref.csv", "ID,Name\n")
	touch(t, dir, "maps.csv", "Sender ID\n")

	m := NewManager(dir, nil)
	batch, err := m.BuildBatch([]string{"Acme_Billing_202401.xlsx"}, map[domain.FileRole]string{
		domain.RoleMapConfig:      "maps.csv",
		domain.RoleCrossReference: "xref.csv",
		domain.RolePartnerReport:  "",
	})
	require.NoError(t, err)

	require.Len(t, batch.Files, 1)
	assert.Equal(t, "Acme_Billing_202401.xlsx", batch.Files[0].Name)
	assert.Equal(t, int64(7), batch.Files[0].Size)
	assert.Equal(t, domain.RolePrimary, batch.Files[0].Role)

	require.Len(t, batch.Auxiliary, 2)
	assert.Equal(t, domain.RoleCrossReference, batch.Auxiliary[0].Role)
	assert.Equal(t, domain.RoleMapConfig, batch.Auxiliary[1].Role)

	rc, err := batch.Files[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "primary", string(data))
}

func TestManager_BuildBatchMissingFile(t *testing.T) {
	_, err := NewManager(t.TempDir(), nil).BuildBatch([]string{"Acme_Billing_202401.xlsx"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Acme_Billing_202401.xlsx")
}

func TestManager_EnsureDirectory(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, nil)

	require.NoError(t, m.EnsureDirectory(filepath.Join("reports", "acme")))
	assert.True(t, m.FileExists(filepath.Join("reports", "acme")))
	require.NoError(t, m.EnsureDirectory("reports"))

	touch(t, dir, "plain", "x")
	assert.Error(t, m.EnsureDirectory("plain"))
	assert.False(t, m.FileExists("missing"))

	_, err := os.Stat(filepath.Join(dir, "reports", "acme"))
	assert.NoError(t, err)
}
