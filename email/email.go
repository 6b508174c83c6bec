// Package email sends transactional mail for group invites.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// Config holds email configuration.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	AppURL   string `yaml:"app_url"`
}

// Service handles email sending.
type Service struct {
	cfg Config
}

// New creates a new email service.
func New(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// IsEnabled returns whether email is enabled.
func (s *Service) IsEnabled() bool {
	return s.cfg.Enabled
}

// SendGroupInvite mails an invite link for joining a group.
func (s *Service) SendGroupInvite(toEmail, inviterName, groupName, token string) error {
	if !s.cfg.Enabled {
		return nil
	}

	subject := fmt.Sprintf("%s te invita a unirte a %s", inviterName, groupName)

	data := map[string]string{
		"InviterName": inviterName,
		"GroupName":   groupName,
		"Link":        fmt.Sprintf("%s/invite?token=%s", s.cfg.AppURL, token),
	}

	body, err := s.renderTemplate(inviteTemplate, data)
	if err != nil {
		return err
	}

	return s.send(toEmail, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n"+
		"%s", from, to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *Service) renderTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const inviteTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #e8e8e8; background: #111; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #b8860b 0%, #8b0000 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .content { background: #1c1c1c; padding: 30px; border-radius: 0 0 10px 10px; }
        .button { display: inline-block; background: #b8860b; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; margin-top: 20px; }
        .footer { text-align: center; margin-top: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Iron Brothers</h1>
    </div>
    <div class="content">
        <p>Hola,</p>
        <p><strong>{{.InviterName}}</strong> te invita a unirte al grupo <strong>{{.GroupName}}</strong> en Iron Brothers.</p>
        <p style="text-align: center;">
            <a href="{{.Link}}" class="button">Unirme al grupo</a>
        </p>
        <p>La invitación expira en 7 días.</p>
    </div>
    <div class="footer">
        <p>Esta invitación fue enviada por {{.InviterName}}. Si no la esperabas, puedes ignorarla.</p>
    </div>
</body>
</html>`
