package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmpl "html/template"
	"io"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each has <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl in FS.
const (
	Welcome   = "welcome"
	VerifyOTP = "verify_otp"
	ResetOTP  = "reset_otp"
)

var ErrUnknownTemplate = errors.New("unknown email template")

var known = map[string]bool{Welcome: true, VerifyOTP: true, ResetOTP: true}

// EmailData holds the fields the templates read.
type EmailData struct {
	Name  string
	Email string
	Type  string

	CompanyName string
	AppName     string

	Code          string
	ExpiresAt     time.Time
	ExpiresAtText string
	ExpiresIn     string
}

// ToMap flattens d into EmailJob.Data. Empty fields are left out so the
// templates fall back to their defaults.
func ToMap(d EmailData) map[string]any {
	m := map[string]any{"Name": d.Name, "Email": d.Email, "Type": d.Type}
	for k, v := range map[string]string{
		"CompanyName":   d.CompanyName,
		"AppName":       d.AppName,
		"Code":          d.Code,
		"ExpiresAtText": d.ExpiresAtText,
		"ExpiresIn":     d.ExpiresIn,
	} {
		if v != "" {
			m[k] = v
		}
	}
	if !d.ExpiresAt.IsZero() {
		m["ExpiresAt"] = d.ExpiresAt.Format(time.RFC3339)
	}
	return m
}

// orDefault backs {{ .Value | default "fallback" }}. Missing map keys reach
// it as nil.
func orDefault(fallback string, value any) any {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback
		}
	}
	return value
}

func funcs() map[string]any {
	return map[string]any{"upper": strings.ToUpper, "default": orDefault}
}

// parsed once; a broken template fails at startup
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(funcs()).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(funcs()).ParseFS(FS, "*.html.tmpl"))
)

func execute(exec func(io.Writer, string, any) error, file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := exec(&buf, file, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render produces the subject, text and html bodies of the named template.
func Render(name string, data any) (subject, text, html string, err error) {
	if !known[name] {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if subject, err = execute(textSet.ExecuteTemplate, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet.ExecuteTemplate, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet.ExecuteTemplate, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
