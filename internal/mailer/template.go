package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Newsletter template layouts. Layout choice affects presentation only;
// subject and content semantics are identical across templates.
const (
	TemplateClassic  = "classic"
	TemplateFeatured = "featured"
)

// Per-template fallback header image, used when the operator supplies none.
var defaultImages = map[string]string{
	TemplateClassic:  "https://static.saunakartta.fi/newsletter/savusauna.jpg",
	TemplateFeatured: "https://static.saunakartta.fi/newsletter/jarvimaisema.jpg",
}

// RenderInput carries everything a layout substitutes into its body.
type RenderInput struct {
	Subject        string
	Content        string // plain text, may contain literal newlines
	ImageURL       string
	UnsubscribeURL string
	Lang           string // BCP 47-ish tag, only used for the unsubscribe label
}

func ValidTemplate(id string) bool {
	_, ok := defaultImages[id]
	return ok
}

// UnsubscribeLabel localizes the footer link text.
func UnsubscribeLabel(lang string) string {
	switch {
	case strings.HasPrefix(lang, "fi"):
		return "Peruuta tilaus"
	case strings.HasPrefix(lang, "sv"):
		return "Avsluta prenumerationen"
	default:
		return "Unsubscribe"
	}
}

type templateData struct {
	Subject          string
	Paragraphs       []string
	ImageURL         string
	UnsubscribeURL   string
	UnsubscribeLabel string
}

var classicTmpl = template.Must(template.New(TemplateClassic).Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4efe9;font-family:Georgia,serif;color:#2d2a26;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border:1px solid #d9cfc2;">
        <tr><td><img src="{{.ImageURL}}" alt="" width="600" style="display:block;width:100%;"></td></tr>
        <tr><td style="padding:32px;">
          <h1 style="margin:0 0 16px;font-size:24px;color:#5b4632;">{{.Subject}}</h1>
          {{range .Paragraphs}}<p style="margin:0 0 12px;line-height:1.6;">{{.}}</p>
          {{end}}
        </td></tr>
        <tr><td style="padding:16px 32px;border-top:1px solid #d9cfc2;font-size:12px;color:#8a7d6d;">
          <a href="{{.UnsubscribeURL}}" style="color:#8a7d6d;">{{.UnsubscribeLabel}}</a>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

var featuredTmpl = template.Must(template.New(TemplateFeatured).Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#1f2a2e;font-family:Helvetica,Arial,sans-serif;color:#e8e4dd;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:32px 16px;">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#2c3a40;border-radius:8px;overflow:hidden;">
        <tr><td style="padding:40px 40px 8px;">
          <h1 style="margin:0;font-size:28px;font-weight:300;color:#d8b26a;">{{.Subject}}</h1>
        </td></tr>
        <tr><td style="padding:24px 40px;"><img src="{{.ImageURL}}" alt="" width="520" style="display:block;width:100%;border-radius:4px;"></td></tr>
        <tr><td style="padding:0 40px 32px;">
          {{range .Paragraphs}}<p style="margin:0 0 14px;line-height:1.7;font-size:15px;">{{.}}</p>
          {{end}}
        </td></tr>
        <tr><td style="padding:20px 40px;background-color:#243136;font-size:12px;color:#93a6ad;">
          <a href="{{.UnsubscribeURL}}" style="color:#93a6ad;">{{.UnsubscribeLabel}}</a>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

var layouts = map[string]*template.Template{
	TemplateClassic:  classicTmpl,
	TemplateFeatured: featuredTmpl,
}

// Render produces the HTML body for one recipient.
func Render(templateID string, in RenderInput) (string, error) {
	tmpl, ok := layouts[templateID]
	if !ok {
		return "", fmt.Errorf("unknown template %q", templateID)
	}

	imageURL := in.ImageURL
	if imageURL == "" {
		imageURL = defaultImages[templateID]
	}

	data := templateData{
		Subject:          in.Subject,
		Paragraphs:       splitParagraphs(in.Content),
		ImageURL:         imageURL,
		UnsubscribeURL:   in.UnsubscribeURL,
		UnsubscribeLabel: UnsubscribeLabel(in.Lang),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", templateID, err)
	}
	return buf.String(), nil
}

func splitParagraphs(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
