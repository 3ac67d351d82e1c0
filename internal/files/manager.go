package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"edipulse/internal/validation"
	"edipulse/pkg/contracts/domain"
)

// Manager turns paths on disk into upload batches
type Manager struct {
	basePath  string
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewManager creates a new file manager instance
func NewManager(basePath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		basePath:  basePath,
		logger:    logger,
		validator: validation.NewFileValidator(logger, validation.SizePolicy{}),
	}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory with all parent directories
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)
	if info, err := os.Stat(fullPath); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", fullPath)
		}
		return nil
	}

	m.logger.Info("Creating directory", slog.String("full_path", fullPath))
	return os.MkdirAll(fullPath, 0755)
}

// BuildBatch wraps primary paths and optional auxiliary paths as uploads.
// Files are opened lazily by the extractor; only their size is read here.
func (m *Manager) BuildBatch(primary []string, auxiliary map[domain.FileRole]string) (domain.UploadBatch, error) {
	var batch domain.UploadBatch
	for _, p := range primary {
		up, err := m.upload(p, domain.RolePrimary)
		if err != nil {
			return domain.UploadBatch{}, err
		}
		batch.Files = append(batch.Files, up)
	}

	// fixed role order keeps the batch deterministic
	for _, role := range []domain.FileRole{domain.RoleCrossReference, domain.RolePartnerReport, domain.RoleMapConfig} {
		p, ok := auxiliary[role]
		if !ok || p == "" {
			continue
		}
		up, err := m.upload(p, role)
		if err != nil {
			return domain.UploadBatch{}, err
		}
		batch.Auxiliary = append(batch.Auxiliary, up)
	}

	m.logger.Debug("Batch assembled",
		slog.Int("files", len(batch.Files)),
		slog.Int("auxiliary", len(batch.Auxiliary)))
	return batch, nil
}

func (m *Manager) upload(path string, role domain.FileRole) (domain.Upload, error) {
	fullPath := m.resolvePath(path)
	if err := m.validator.ValidateFile(fullPath); err != nil {
		return domain.Upload{}, fmt.Errorf("invalid %s file: %w", role, err)
	}
	up, err := domain.NewUploadFromPath(fullPath, filepath.Base(fullPath), role)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to stat %s file %s: %w", role, path, err)
	}
	return up, nil
}

// resolvePath resolves a path relative to the base path
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.basePath == "" {
		return path
	}
	return filepath.Join(m.basePath, path)
}
