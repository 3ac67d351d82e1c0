package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "edipulse/internal/errors"
	"edipulse/pkg/contracts/domain"
)

// SizePolicy bounds the accepted byte size of a single uploaded file
type SizePolicy struct {
	MinBytes int64
	MaxBytes int64
}

// FileValidator provides common file validation functions for the pipeline and CLI
type FileValidator struct {
	logger *slog.Logger
	policy SizePolicy
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger, policy SizePolicy) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
		policy: policy,
	}
}

// ValidateSize applies the size policy to a classified file. Violations are
// parse errors local to that file.
func (v *FileValidator) ValidateSize(desc domain.FileDescriptor) error {
	if desc.ByteSize < v.policy.MinBytes {
		v.logger.Warn("File below minimum size",
			slog.String("file", desc.Name),
			slog.Int64("size", desc.ByteSize),
			slog.Int64("min", v.policy.MinBytes))
		return apierrors.NewParsingError(desc.Name,
			fmt.Sprintf("file is %d bytes, minimum is %d", desc.ByteSize, v.policy.MinBytes), nil)
	}
	if v.policy.MaxBytes > 0 && desc.ByteSize > v.policy.MaxBytes {
		v.logger.Warn("File exceeds size ceiling",
			slog.String("file", desc.Name),
			slog.Int64("size", desc.ByteSize),
			slog.Int64("max", v.policy.MaxBytes))
		return apierrors.NewParsingError(desc.Name,
			fmt.Sprintf("file is %d bytes, ceiling is %d", desc.ByteSize, v.policy.MaxBytes), nil)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// IsTemporaryFile reports office lock files such as ~$Acme_Billing_202401.xlsx
func IsTemporaryFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "~$")
}
