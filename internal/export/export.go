// Package export writes generated reports to local files.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Format is an export file format.
type Format string

const (
	// FormatText writes the content verbatim.
	FormatText Format = "txt"
	// FormatMarkdown writes the content under a title heading.
	FormatMarkdown Format = "md"
	// FormatHTML renders the markdown content to a standalone page.
	FormatHTML Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatHTML}

// ParseFormat accepts a format name, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	case "":
		return FormatText, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Write saves report into dir and returns the file path.
func Write(dir string, report model.Report, format Format) (string, error) {
	body, err := Render(report, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(report, format))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// Render returns the file contents for report in format.
func Render(report model.Report, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(report.Content), nil
	case FormatMarkdown:
		return []byte(markdownDocument(report)), nil
	case FormatHTML:
		return htmlDocument(report)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// FileName derives a safe file name from the report title.
func FileName(report model.Report, format Format) string {
	return sanitize(report.Title, report.ID) + "." + string(format)
}

const maxNameRunes = 120

func sanitize(title, fallback string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.':
			b.WriteRune(r)
			lastDash = false
		case r == '-' || r == '/' || r == '\\' || r == ':' || unicode.IsSpace(r):
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}

	name := strings.Trim(b.String(), "-.")
	if runes := []rune(name); len(runes) > maxNameRunes {
		name = strings.TrimRight(string(runes[:maxNameRunes]), "-.")
	}
	if name == "" {
		name = "report"
		if fallback != "" {
			name += "-" + sanitize(fallback, "")
		}
	}
	return name
}

func markdownDocument(report model.Report) string {
	content := strings.TrimSpace(report.Content)
	if strings.HasPrefix(content, "# ") {
		return content + "\n"
	}
	return "# " + report.Title + "\n\n" + content + "\n"
}

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
{{.Body}}
</article>
<footer>{{.Type}} · {{.Created}}</footer>
</body>
</html>
`))

var policy = bluemonday.UGCPolicy()

func htmlDocument(report model.Report) ([]byte, error) {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML([]byte(markdownDocument(report)), p, r)

	created := ""
	if !report.CreatedAt.IsZero() {
		created = report.CreatedAt.Format("2006-01-02 15:04")
	}

	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title   string
		Type    string
		Created string
		Body    template.HTML
	}{
		Title:   report.Title,
		Type:    report.ReportType.Label(),
		Created: created,
		Body:    template.HTML(policy.SanitizeBytes(rendered)), //nolint:gosec // sanitized above
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	return buf.Bytes(), nil
}
