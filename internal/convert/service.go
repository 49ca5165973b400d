package convert

import (
	"context"
	"fmt"
	"html/template"
)

// Service provides manuscript conversion
type Service struct {
	store DataStore
}

// NewService creates a new convert service
func NewService(store DataStore) *Service {
	return &Service{store: store}
}

// Convert renders a manuscript in the requested format
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	ms, err := s.store.GetManuscript(ctx, req.ManuscriptID)
	if err != nil {
		return nil, fmt.Errorf("get manuscript: %w", err)
	}

	project, err := s.store.GetProject(ctx, ms.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	data := TemplateData{
		Title:        ms.Title,
		ProjectTitle: project.Title,
		BodyHTML:     template.HTML(BodyToHTML(ms.Body)),
		Author:       ms.UpdatedBy,
		UpdatedAt:    ms.UpdatedAt,
	}

	html, err := RenderManuscriptHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch req.Format {
	case FormatPDF:
		return renderPDF(html, ms.Title)
	case FormatHTML:
		return &Result{
			Data:     []byte(html),
			Filename: sanitizeFilename(ms.Title) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}
