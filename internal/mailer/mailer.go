// Package mailer renders named templates into a shared layout and
// sends them over SMTP.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"gopkg.in/gomail.v2"

	"github.com/ewen-lbh/loca7/internal/config"
)

// Mailer sends transactional mail. Templates live in a directory as
// <name>.html fragments inserted into _layout.html's content slot.
type Mailer struct {
	cfg    config.Mail
	dialer *gomail.Dialer
}

// New creates a mailer from configuration.
func New(cfg config.Mail) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// SendMail renders the named template with data and sends it. The
// subject is also a template, so it can carry per-message values.
func (m *Mailer) SendMail(templateName, to, subject string, data map[string]any) error {
	renderedSubject, err := renderString(subject, data)
	if err != nil {
		return fmt.Errorf("failed to render subject: %w", err)
	}

	body, err := m.render(templateName, renderedSubject, data)
	if err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.cfg.From)
	message.SetHeader("To", to)
	message.SetHeader("Subject", renderedSubject)
	message.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) render(templateName, title string, data map[string]any) (string, error) {
	layout, err := os.ReadFile(filepath.Join(m.cfg.TemplatesDir, "_layout.html"))
	if err != nil {
		return "", fmt.Errorf("failed to read mail layout: %w", err)
	}
	content, err := os.ReadFile(filepath.Join(m.cfg.TemplatesDir, templateName+".html"))
	if err != nil {
		return "", fmt.Errorf("failed to read mail template %s: %w", templateName, err)
	}

	tmpl, err := template.New(templateName).Parse(
		string(bytes.Replace(layout, []byte("%content%"), content, 1)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse mail template %s: %w", templateName, err)
	}

	values := map[string]any{"Title": title}
	for k, v := range data {
		values[k] = v
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, values); err != nil {
		return "", fmt.Errorf("failed to render mail template %s: %w", templateName, err)
	}
	return rendered.String(), nil
}

func renderString(s string, data map[string]any) (string, error) {
	tmpl, err := template.New("inline").Parse(s)
	if err != nil {
		return "", err
	}
	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}
