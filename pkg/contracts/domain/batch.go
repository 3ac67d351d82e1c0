package domain

import (
	"bytes"
	"io"
	"os"
)

// FileRole declares what an uploaded file is for
type FileRole string

const (
	RolePrimary        FileRole = "primary"
	RoleCrossReference FileRole = "cross_reference"
	RolePartnerReport  FileRole = "partner_report"
	RoleMapConfig      FileRole = "map_config"
)

// FileFormat is the physical encoding of an uploaded file
type FileFormat string

const (
	FormatSpreadsheet FileFormat = "spreadsheet"
	FormatDelimited   FileFormat = "delimited"
)

// Upload is one raw file blob handed to a session
type Upload struct {
	Name string
	Size int64
	Role FileRole
	Open func() (io.ReadCloser, error)
}

// UploadBatch is the ordered set of files finalized by the user for one analysis run
type UploadBatch struct {
	Files     []Upload
	Auxiliary []Upload
}

// NewUploadFromBytes wraps an in-memory blob
func NewUploadFromBytes(name string, data []byte, role FileRole) Upload {
	return Upload{
		Name: name,
		Size: int64(len(data)),
		Role: role,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// NewUploadFromPath wraps a file on disk; the file is not opened until read.
// name is the base name used for classification.
func NewUploadFromPath(path, name string, role FileRole) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, err
	}
	return Upload{
		Name: name,
		Size: info.Size(),
		Role: role,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FileDescriptor is what the classifier learned about one file. Immutable once built.
type FileDescriptor struct {
	Name             string     `json:"name"`
	ByteSize         int64      `json:"byte_size"`
	DetectedCustomer string     `json:"detected_customer,omitempty"`
	DetectedType     string     `json:"detected_type,omitempty"`
	DetectedPeriod   string     `json:"detected_period,omitempty"`
	Kind             FileFormat `json:"kind"`
	Role             FileRole   `json:"role"`
	Extension        string     `json:"extension"`
}

// IsSpreadsheet reports whether the file is a workbook
func (d FileDescriptor) IsSpreadsheet() bool {
	return d.Kind == FormatSpreadsheet
}

// ClassifiedBatch pairs every upload with its descriptor, preserving batch order
type ClassifiedBatch struct {
	Customer  string
	Primary   []ClassifiedFile
	Auxiliary []ClassifiedFile
}

// ClassifiedFile is an upload plus its descriptor
type ClassifiedFile struct {
	Upload     Upload
	Descriptor FileDescriptor
}

// Descriptors returns every descriptor, primary files first
func (b ClassifiedBatch) Descriptors() []FileDescriptor {
	out := make([]FileDescriptor, 0, len(b.Primary)+len(b.Auxiliary))
	for _, f := range b.Primary {
		out = append(out, f.Descriptor)
	}
	for _, f := range b.Auxiliary {
		out = append(out, f.Descriptor)
	}
	return out
}
