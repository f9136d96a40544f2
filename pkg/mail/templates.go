package mail

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/telekom/smtp-mail-adapter/pkg/metrics"
)

// Template base names. Each has a .txt and a .html variant in the template directory.
const (
	VerificationEmailTemplate  = "verificationEmail"
	PasswordResetEmailTemplate = "passwordResetEmail"
)

// RequiredTemplates lists the files that must exist in the template directory.
var RequiredTemplates = []string{
	VerificationEmailTemplate + ".txt",
	VerificationEmailTemplate + ".html",
	PasswordResetEmailTemplate + ".txt",
	PasswordResetEmailTemplate + ".html",
}

var ErrTemplateNotFound = errors.New("template not found")

// ValidateTemplate fails when dir does not exist or has no file called name.
func ValidateTemplate(dir, name string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: options.templateDir does not exist ('%s')", ErrTemplateNotFound, dir)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("%w: '%s' does not exist in '%s'", ErrTemplateNotFound, name, dir)
	}
	return nil
}

// TemplateData is the context every mail template is executed with. Templates
// see it as a map with the keys link, appName, user and language, e.g.
// {{ .appName }} or {{ .user.Get "username" }}.
type TemplateData struct {
	Link     string
	AppName  string
	User     User
	Language string
}

func (d TemplateData) toMap() map[string]any {
	return map[string]any{
		"link":     d.Link,
		"appName":  d.AppName,
		"user":     d.User,
		"language": d.Language,
	}
}

// Renderer renders the mail templates of one template directory. Every adapter
// owns its own Renderer, so adapters with different directories don't share
// any engine state.
type Renderer struct {
	dir       string
	htmlFuncs htmltemplate.FuncMap
	textFuncs texttemplate.FuncMap
}

// NewRenderer creates a renderer reading templates from dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{
		dir:       dir,
		htmlFuncs: sprig.FuncMap(),
		textFuncs: sprig.TxtFuncMap(),
	}
}

// Dir returns the template directory.
func (r *Renderer) Dir() string {
	return r.dir
}

// Render reads and executes the template file name. Files ending in .html are
// executed with contextual HTML escaping; everything else is rendered as plain text.
// Templates are read from disk on every call.
func (r *Renderer) Render(name string, data TemplateData) (string, error) {
	out, err := r.render(name, data)
	if err != nil {
		metrics.MailRenderFailure.WithLabelValues(name).Inc()
		return "", err
	}
	return out, nil
}

func (r *Renderer) render(name string, data TemplateData) (string, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrTemplateNotFound, name, err)
	}

	var b bytes.Buffer
	if strings.HasSuffix(name, ".html") {
		t, err := htmltemplate.New(name).Funcs(r.htmlFuncs).Parse(string(raw))
		if err != nil {
			return "", fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		if err := t.Execute(&b, data.toMap()); err != nil {
			return "", fmt.Errorf("failed to execute template %s: %w", name, err)
		}
		return b.String(), nil
	}

	t, err := texttemplate.New(name).Funcs(r.textFuncs).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	if err := t.Execute(&b, data.toMap()); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return b.String(), nil
}

// RenderPair renders the .txt and .html variants of a template base name.
func (r *Renderer) RenderPair(base string, data TemplateData) (text, html string, err error) {
	text, err = r.Render(base+".txt", data)
	if err != nil {
		return "", "", err
	}
	html, err = r.Render(base+".html", data)
	if err != nil {
		return "", "", err
	}
	return text, html, nil
}
