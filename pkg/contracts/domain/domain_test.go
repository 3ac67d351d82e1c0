package domain

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPeriod(t *testing.T) {
	tests := []struct {
		period string
		want   bool
	}{
		{"202401", true},
		{"199912", true},
		{"202400", false},
		{"202413", false},
		{"20241", false},
		{"2024011", false},
		{"2024-01", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPeriod(tt.period))
		})
	}
}

func TestNormalizedRecord_Volume(t *testing.T) {
	r := NormalizedRecord{DocumentCount: 12, KilocharacterCount: 3.5}

	assert.Equal(t, 12.0, r.Volume(MeasureDocuments))
	assert.Equal(t, 3.5, r.Volume(MeasureKilocharacters))
	assert.Equal(t, 12.0, r.Volume(""), "unknown measure counts documents")
}

func TestCrossReferenceIndex(t *testing.T) {
	idx := NewCrossReferenceIndex([]CrossReferenceEntry{
		{ID: "WM01", Name: "Walmart", Region: "US"},
		{ID: "TG01", Name: "Target"},
		{ID: "WM01", Name: "Walmart Inc", Region: "US"},
		{ID: "BLANK"},
	})

	e, ok := idx.Lookup("WM01")
	require.True(t, ok)
	assert.Equal(t, "Walmart Inc", e.Name, "later entries replace earlier ones")

	assert.Equal(t, "Target", idx.Display("TG01", "tgt"))
	assert.Equal(t, "record name", idx.Display("BLANK", "record name"))
	assert.Equal(t, "ZZ99", idx.Display("ZZ99", ""))

	var empty CrossReferenceIndex
	_, ok = empty.Lookup("WM01")
	assert.False(t, ok)
	assert.Equal(t, "WM01", empty.Display("WM01", ""))
}

func TestSeverity_Text(t *testing.T) {
	for _, s := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var back Severity
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}

	var s Severity
	assert.Error(t, s.UnmarshalText([]byte("urgent")))
	assert.Equal(t, "severity(9)", Severity(9).String())
}

func TestInsight_JSONSeverityByName(t *testing.T) {
	data, err := json.Marshal(Insight{Category: CategoryTrend, Severity: SeverityHigh, Key: "mom_decline"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"high"`)
}

func TestWarning_String(t *testing.T) {
	tests := []struct {
		name string
		w    Warning
		want string
	}{
		{
			name: "file only",
			w:    Warning{Type: "PARSING", File: "a.xlsx", Message: "corrupt"},
			want: "PARSING a.xlsx: corrupt",
		},
		{
			name: "full location",
			w:    Warning{Type: "VALIDATION", File: "a.xlsx", Sheet: "Date_Summary", Row: 7, Column: "Date", Message: "bad date"},
			want: "VALIDATION a.xlsx!Date_Summary:7 [Date]: bad date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.w.String())
		})
	}
}

func TestTableKinds(t *testing.T) {
	for _, k := range SummaryKinds {
		assert.True(t, k.IsSummary(), k)
	}
	assert.False(t, KindCrossReference.IsSummary())

	k, ok := KindForRole(RolePartnerReport)
	assert.True(t, ok)
	assert.Equal(t, KindPartnerReport, k)

	_, ok = KindForRole(RolePrimary)
	assert.False(t, ok)
}

func TestRawTable_SourceRow(t *testing.T) {
	withNumbers := RawTable{FirstRow: 2, RowNumbers: []int{2, 4, 5}}
	assert.Equal(t, 4, withNumbers.SourceRow(1))
	assert.Equal(t, 5, withNumbers.SourceRow(3), "past RowNumbers falls back to FirstRow offset")

	plain := RawTable{FirstRow: 3}
	assert.Equal(t, 5, plain.SourceRow(2))
}

func TestCell_IsEmpty(t *testing.T) {
	assert.True(t, Cell{}.IsEmpty())
	assert.True(t, Cell{Kind: CellString, Text: "   "}.IsEmpty())
	assert.False(t, Cell{Kind: CellNumber, Text: "0", Number: 0}.IsEmpty())
}

func TestUploads(t *testing.T) {
	u := NewUploadFromBytes("Acme_Billing_202401.csv", []byte("a,b\n"), RolePrimary)
	assert.Equal(t, int64(4), u.Size)
	rc, err := u.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "a,b\n", string(data))

	path := filepath.Join(t.TempDir(), "xref.csv")
	require.NoError(t, os.WriteFile(path, []byte("ID,Name\n"), 0o644))
	p, err := NewUploadFromPath(path, "xref.csv", RoleCrossReference)
	require.NoError(t, err)
	assert.Equal(t, int64(8), p.Size)
	assert.Equal(t, RoleCrossReference, p.Role)

	_, err = NewUploadFromPath(filepath.Join(t.TempDir(), "missing.csv"), "missing.csv", RolePrimary)
	assert.Error(t, err)
}

func TestClassifiedBatch_Descriptors(t *testing.T) {
	b := ClassifiedBatch{
		Auxiliary: []ClassifiedFile{{Descriptor: FileDescriptor{Name: "xref.csv"}}},
		Primary: []ClassifiedFile{
			{Descriptor: FileDescriptor{Name: "Acme_Billing_202401.xlsx", Kind: FormatSpreadsheet}},
			{Descriptor: FileDescriptor{Name: "Acme_Billing_202402.csv", Kind: FormatDelimited}},
		},
	}

	got := b.Descriptors()
	require.Len(t, got, 3)
	assert.Equal(t, "Acme_Billing_202401.xlsx", got[0].Name)
	assert.Equal(t, "xref.csv", got[2].Name)
	assert.True(t, got[0].IsSpreadsheet())
	assert.False(t, got[1].IsSpreadsheet())
}

func TestSeasonality_Peaks(t *testing.T) {
	s := Seasonality{Months: []MonthSeason{{Month: 1}, {Month: 11, Peak: true}, {Month: 12, Peak: true}}}

	peaks := s.Peaks()
	require.Len(t, peaks, 2)
	assert.Equal(t, 11, peaks[0].Month)
	assert.Empty(t, Seasonality{}.Peaks())
}
