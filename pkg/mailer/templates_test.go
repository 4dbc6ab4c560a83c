package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	subject, text, html, err := Render(TemplateWelcome, map[string]any{
		"AppName":     "goobex",
		"DisplayName": "Alice",
		"Email":       "a@x.com",
		"ProfileURL":  "http://localhost:8081/profile/Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome to goobex", subject)
	assert.Contains(t, text, "http://localhost:8081/profile/Alice")
	assert.Contains(t, html, "Alice")
	assert.Contains(t, html, "a@x.com")
}

func TestRenderEscapesHTML(t *testing.T) {
	_, _, html, err := Render(TemplateWelcome, map[string]any{
		"AppName":     "goobex",
		"DisplayName": "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("password_reset", nil)
	assert.Error(t, err)
}
