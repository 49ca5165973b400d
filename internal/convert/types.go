// Package convert renders manuscripts to downloadable formats.
package convert

import (
	"context"
	"errors"
	"time"
)

// Format represents the conversion output format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Request contains parameters for a conversion
type Request struct {
	ManuscriptID string
	Format       Format
}

// Result contains the conversion output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ManuscriptInfo holds the manuscript data needed for rendering
type ManuscriptInfo struct {
	ID        string
	Title     string
	Body      string
	ProjectID string
	UpdatedBy string
	UpdatedAt time.Time
}

// ProjectInfo holds project metadata for the rendered header
type ProjectInfo struct {
	ID    string
	Title string
}

// DataStore defines the interface for data access
type DataStore interface {
	GetManuscript(ctx context.Context, id string) (ManuscriptInfo, error)
	GetProject(ctx context.Context, id string) (ProjectInfo, error)
}

var (
	// ErrPDFDependencyMissing indicates PDF conversion runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("convert pdf dependency missing")
)
