package convert

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var manuscriptTemplate = template.Must(template.New("manuscript").Funcs(template.FuncMap{
	"lower": strings.ToLower,
	"formatDate": func(t time.Time, layout string) string {
		return t.Format(layout)
	},
}).Parse(manuscriptTemplateSrc))

// TemplateData holds data for manuscript template rendering
type TemplateData struct {
	Title        string
	ProjectTitle string
	BodyHTML     template.HTML
	Author       string
	UpdatedAt    time.Time
}

// RenderManuscriptHTML renders the manuscript template with provided data
func RenderManuscriptHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := manuscriptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BodyToHTML converts plain manuscript text into paragraph markup. Blank
// lines separate paragraphs; single newlines become line breaks. All text
// is HTML-escaped before wrapping.
func BodyToHTML(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	blocks := strings.Split(body, "\n\n")

	var sb strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		escaped := template.HTMLEscapeString(block)
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")
		sb.WriteString("<p>")
		sb.WriteString(escaped)
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

const manuscriptTemplateSrc = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Georgia, 'Times New Roman', serif; line-height: 1.7; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #7a4b1f; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    p { margin: 0 0 1em 0; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.ProjectTitle}}{{if .Author}} | {{.Author}}{{end}}{{if not .UpdatedAt.IsZero}} | {{formatDate .UpdatedAt "Jan 2, 2006"}}{{end}}</div>
  <div>{{.BodyHTML}}</div>
</body>
</html>`
