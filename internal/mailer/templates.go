package mailer

import (
	"fmt"
	"strings"
	"text/template"
)

// Template names used by the credential lifecycle.
const (
	TemplateEmailVerification = "emailVerification"
	TemplateForgotPassword    = "forgotPassword"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "emailVerification" -}}
Hello {{.name}},

Please verify your email address by following the link below:

{{.link}}

The link is valid for 24 hours. If you did not create an account, you can
ignore this message.

Regards,
The Triplog Team
{{- end}}

{{define "forgotPassword" -}}
Hello {{.name}},

You requested a password reset. Follow the link below to choose a new
password:

{{.link}}

The link is valid for 1 hour. If you did not request this, please ignore
this email.

Regards,
The Triplog Team
{{- end}}
`))

func render(name string, vars map[string]any) (string, error) {
	if templates.Lookup(name) == nil {
		return "", fmt.Errorf("mailer: unknown template %q", name)
	}

	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, vars); err != nil {
		return "", fmt.Errorf("mailer: render %q: %w", name, err)
	}
	return b.String(), nil
}
