package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookBytes(t *testing.T) {
	data := WorkbookBytes(t,
		Sheet{Name: "Date_Summary", Rows: [][]any{{"Date", "Documents"}, {"01/02/2024", 100}}},
		Sheet{Name: "TP_Summary", Rows: [][]any{{"Trading Partner", "Documents"}}},
	)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Date_Summary", "TP_Summary"}, f.GetSheetList())
	rows, err := f.GetRows("Date_Summary")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Date", "Documents"}, {"01/02/2024", "100"}}, rows)
}
