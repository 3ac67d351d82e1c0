// Package classifier recovers customer, type and period from batch file names
// and rejects batches that do not follow the naming scheme before any bytes are read.
package classifier

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

// namePattern matches CustomerName_Type_Period.ext. The customer may itself
// contain underscores; type is the last segment before the period.
var namePattern = regexp.MustCompile(`(?i)^(.+)_([^_]+)_(\d{6,8})\.(xlsx|xls|xlsm|csv)$`)

// Classifier inspects file names only; it never opens a file
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a classifier; a nil logger falls back to slog.Default
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger.With(slog.String("component", "classifier"))}
}

// ClassifyName matches one primary file name against the canonical scheme
func (c *Classifier) ClassifyName(name string, size int64) (domain.FileDescriptor, error) {
	base := filepath.Base(name)
	m := namePattern.FindStringSubmatch(base)
	if m == nil {
		return domain.FileDescriptor{}, apierrors.NewPatternDetectionError(base,
			"file name does not match CustomerName_Type_Period.(xlsx|xls|xlsm|csv)")
	}

	period := m[3][:6]
	if !domain.IsValidPeriod(period) {
		return domain.FileDescriptor{}, apierrors.NewPatternDetectionError(base,
			fmt.Sprintf("period %q is not a valid YYYYMM month", m[3]))
	}

	ext := "." + strings.ToLower(m[4])
	return domain.FileDescriptor{
		Name:             base,
		ByteSize:         size,
		DetectedCustomer: m[1],
		DetectedType:     m[2],
		DetectedPeriod:   period,
		Kind:             FormatForExtension(ext),
		Role:             domain.RolePrimary,
		Extension:        ext,
	}, nil
}

// ClassifyAuxiliary describes a cross-reference, partner-report or map-configuration
// file by its declared role. Only the extension is inspected.
func (c *Classifier) ClassifyAuxiliary(name string, size int64, role domain.FileRole) (domain.FileDescriptor, error) {
	base := filepath.Base(name)
	if _, ok := domain.KindForRole(role); !ok {
		return domain.FileDescriptor{}, apierrors.NewPatternDetectionError(base,
			fmt.Sprintf("unsupported auxiliary role %q", role))
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !IsSupportedExtension(ext) {
		return domain.FileDescriptor{}, apierrors.NewPatternDetectionError(base,
			fmt.Sprintf("unsupported file extension %q", ext))
	}

	return domain.FileDescriptor{
		Name:      base,
		ByteSize:  size,
		Kind:      FormatForExtension(ext),
		Role:      role,
		Extension: ext,
	}, nil
}

// ClassifyBatch classifies every file. The first primary file fixes the customer;
// any name that fails the pattern or names another customer rejects the whole batch.
func (c *Classifier) ClassifyBatch(batch domain.UploadBatch) (domain.ClassifiedBatch, error) {
	var out domain.ClassifiedBatch

	if len(batch.Files) == 0 {
		return out, apierrors.NewEmptyDatasetError("batch contains no primary files")
	}

	for i, up := range batch.Files {
		desc, err := c.ClassifyName(up.Name, up.Size)
		if err != nil {
			c.logger.Warn("Batch rejected by name pattern",
				slog.String("file", up.Name),
				slog.Int("position", i))
			return domain.ClassifiedBatch{}, err
		}

		if i == 0 {
			out.Customer = desc.DetectedCustomer
		} else if !strings.EqualFold(desc.DetectedCustomer, out.Customer) {
			c.logger.Warn("Batch rejected by customer mismatch",
				slog.String("file", up.Name),
				slog.String("expected", out.Customer),
				slog.String("found", desc.DetectedCustomer))
			return domain.ClassifiedBatch{}, apierrors.NewPatternDetectionError(desc.Name,
				fmt.Sprintf("customer %q does not match batch customer %q", desc.DetectedCustomer, out.Customer))
		}

		out.Primary = append(out.Primary, domain.ClassifiedFile{Upload: up, Descriptor: desc})
	}

	for _, up := range batch.Auxiliary {
		desc, err := c.ClassifyAuxiliary(up.Name, up.Size, up.Role)
		if err != nil {
			return domain.ClassifiedBatch{}, err
		}
		out.Auxiliary = append(out.Auxiliary, domain.ClassifiedFile{Upload: up, Descriptor: desc})
	}

	c.logger.Info("Batch classified",
		slog.String("customer", out.Customer),
		slog.Int("primary_files", len(out.Primary)),
		slog.Int("auxiliary_files", len(out.Auxiliary)))

	return out, nil
}

// IsSupportedExtension reports whether ext (with dot, any case) is accepted
func IsSupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".xlsx", ".xls", ".xlsm", ".csv":
		return true
	}
	return false
}

// FormatForExtension maps an extension to its physical format
func FormatForExtension(ext string) domain.FileFormat {
	if strings.EqualFold(ext, ".csv") {
		return domain.FormatDelimited
	}
	return domain.FormatSpreadsheet
}
