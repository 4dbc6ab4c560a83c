package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var welcomeHTML = template.Must(template.New(TemplateWelcome).Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>Welcome to {{.AppName}}{{if .DisplayName}}, {{.DisplayName}}{{end}}!</h2>
    <p>Your profile is ready. Other members can find you at
      <a href="{{.ProfileURL}}">{{.ProfileURL}}</a>.</p>
    <p>You signed up with {{.Email}}. Sign-in always goes through your
      identity provider; there is no separate password to remember.</p>
  </body>
</html>`))

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case TemplateWelcome:
		var buf bytes.Buffer
		if err := welcomeHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		subject = fmt.Sprintf("Welcome to %v", data["AppName"])
		text = fmt.Sprintf("Welcome to %v! Your profile is ready: %v", data["AppName"], data["ProfileURL"])
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("mailer: unknown template %q", name)
	}
}
