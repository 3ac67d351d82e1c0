package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

func TestClassifier_ClassifyName(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name         string
		file         string
		wantCustomer string
		wantType     string
		wantPeriod   string
		wantFormat   domain.FileFormat
		wantErr      bool
	}{
		{
			name:         "csv monthly",
			file:         "Acme_Billing_202401.csv",
			wantCustomer: "Acme",
			wantType:     "Billing",
			wantPeriod:   "202401",
			wantFormat:   domain.FormatDelimited,
		},
		{
			name:         "xlsx with day",
			file:         "Globex_Usage_20231215.xlsx",
			wantCustomer: "Globex",
			wantType:     "Usage",
			wantPeriod:   "202312",
			wantFormat:   domain.FormatSpreadsheet,
		},
		{
			name:         "customer with underscores",
			file:         "Big_Box_Retail_Billing_202402.XLSM",
			wantCustomer: "Big_Box_Retail",
			wantType:     "Billing",
			wantPeriod:   "202402",
			wantFormat:   domain.FormatSpreadsheet,
		},
		{
			name:         "legacy xls",
			file:         "Initech_TP_2024031.xls",
			wantCustomer: "Initech",
			wantType:     "TP",
			wantPeriod:   "202403",
			wantFormat:   domain.FormatSpreadsheet,
		},
		{name: "missing period", file: "Acme_Billing.csv", wantErr: true},
		{name: "short period", file: "Acme_Billing_20241.csv", wantErr: true},
		{name: "long period", file: "Acme_Billing_202401011.csv", wantErr: true},
		{name: "bad extension", file: "Acme_Billing_202401.pdf", wantErr: true},
		{name: "invalid month", file: "Acme_Billing_202413.csv", wantErr: true},
		{name: "no type segment", file: "Acme_202401.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := c.ClassifyName(tt.file, 10)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierrors.IsType(err, apierrors.ErrTypePatternDetection))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCustomer, desc.DetectedCustomer)
			assert.Equal(t, tt.wantType, desc.DetectedType)
			assert.Equal(t, tt.wantPeriod, desc.DetectedPeriod)
			assert.Equal(t, tt.wantFormat, desc.Kind)
			assert.Equal(t, domain.RolePrimary, desc.Role)
			assert.Equal(t, int64(10), desc.ByteSize)
		})
	}
}

func TestClassifier_ClassifyBatch(t *testing.T) {
	c := NewClassifier(nil)

	upload := func(name string) domain.Upload {
		return domain.NewUploadFromBytes(name, []byte("x"), domain.RolePrimary)
	}

	t.Run("same customer", func(t *testing.T) {
		batch := domain.UploadBatch{
			Files: []domain.Upload{upload("Acme_Billing_202401.csv"), upload("ACME_Billing_202402.csv")},
			Auxiliary: []domain.Upload{
				domain.NewUploadFromBytes("partners.xlsx", []byte("x"), domain.RoleCrossReference),
			},
		}
		got, err := c.ClassifyBatch(batch)
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.Customer)
		assert.Len(t, got.Primary, 2)
		require.Len(t, got.Auxiliary, 1)
		assert.Equal(t, domain.RoleCrossReference, got.Auxiliary[0].Descriptor.Role)
		assert.Len(t, got.Descriptors(), 3)
	})

	t.Run("customer mismatch fails the batch", func(t *testing.T) {
		batch := domain.UploadBatch{
			Files: []domain.Upload{upload("Acme_X_202401.csv"), upload("Globex_X_202402.csv")},
		}
		_, err := c.ClassifyBatch(batch)
		require.Error(t, err)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypePatternDetection))
		assert.Contains(t, err.Error(), "Globex_X_202402.csv")
	})

	t.Run("first file unrecognized", func(t *testing.T) {
		batch := domain.UploadBatch{
			Files: []domain.Upload{upload("report.csv"), upload("Acme_X_202402.csv")},
		}
		_, err := c.ClassifyBatch(batch)
		require.Error(t, err)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypePatternDetection))
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := c.ClassifyBatch(domain.UploadBatch{})
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeEmptyDataset))
	})

	t.Run("auxiliary with bad role", func(t *testing.T) {
		batch := domain.UploadBatch{
			Files:     []domain.Upload{upload("Acme_X_202401.csv")},
			Auxiliary: []domain.Upload{domain.NewUploadFromBytes("x.csv", []byte("x"), domain.RolePrimary)},
		}
		_, err := c.ClassifyBatch(batch)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypePatternDetection))
	})
}
