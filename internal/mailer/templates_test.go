package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKnownTemplates(t *testing.T) {
	tests := []struct {
		template string
		contains string
	}{
		{TemplateEmailVerification, "verify your email address"},
		{TemplateForgotPassword, "requested a password reset"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			body, err := render(tt.template, map[string]any{
				"name": "Ana",
				"link": "http://localhost:3000/verify-email/abc123",
			})
			require.NoError(t, err)
			assert.Contains(t, body, "Hello Ana")
			assert.Contains(t, body, "http://localhost:3000/verify-email/abc123")
			assert.Contains(t, body, tt.contains)
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := render("nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template")
}
