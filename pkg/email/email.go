package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP settings and the alert recipients
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	AlertTo      []string
	ShopName     string
}

// Enabled reports whether enough is configured to send mail
func (c Config) Enabled() bool {
	return c.SMTPHost != "" && c.FromEmail != "" && len(c.AlertTo) > 0
}

// StockLine is one product in a low stock alert
type StockLine struct {
	SKU      string
	Name     string
	Quantity int
	MinStock int
}

// SendFunc delivers a raw message. It matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends shop notifications over SMTP
type Mailer struct {
	config Config
	send   SendFunc
	tmpl   *template.Template
}

// NewMailer creates a mailer that delivers through smtp.SendMail
func NewMailer(config Config) *Mailer {
	return NewMailerWithSender(config, smtp.SendMail)
}

// NewMailerWithSender creates a mailer with a custom delivery function
func NewMailerWithSender(config Config, send SendFunc) *Mailer {
	if config.ShopName == "" {
		config.ShopName = "ShopDesk"
	}
	return &Mailer{
		config: config,
		send:   send,
		tmpl:   template.Must(template.New("low_stock").Parse(lowStockTemplate)),
	}
}

// SendLowStockAlert mails the alert recipients the products that need restocking
func (m *Mailer) SendLowStockAlert(ctx context.Context, lines []StockLine) error {
	if len(lines) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := m.tmpl.Execute(&body, struct {
		ShopName string
		Lines    []StockLine
	}{m.config.ShopName, lines})
	if err != nil {
		return fmt.Errorf("render low stock alert: %w", err)
	}

	subject := fmt.Sprintf("%s: %d products need restocking", m.config.ShopName, len(lines))
	msg := m.buildHTMLEmail(m.config.AlertTo, subject, body.String())

	addr := fmt.Sprintf("%s:%d", m.config.SMTPHost, m.config.SMTPPort)
	var auth smtp.Auth
	if m.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)
	}
	if err := m.send(addr, auth, m.config.FromEmail, m.config.AlertTo, msg); err != nil {
		return fmt.Errorf("send low stock alert: %w", err)
	}
	return nil
}

func (m *Mailer) buildHTMLEmail(to []string, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		m.config.FromName,
		m.config.FromEmail,
		strings.Join(to, ", "),
		subject,
	)
	return []byte(headers + htmlBody)
}

const lowStockTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Low stock</title></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; color: #1a1a2e;">
  <h2>{{.ShopName}}: low stock</h2>
  <p>The following products are at or below their minimum stock level.</p>
  <table style="border-collapse: collapse;">
    <tr>
      <th style="text-align: left; padding: 4px 12px;">SKU</th>
      <th style="text-align: left; padding: 4px 12px;">Product</th>
      <th style="text-align: right; padding: 4px 12px;">On hand</th>
      <th style="text-align: right; padding: 4px 12px;">Minimum</th>
    </tr>
    {{range .Lines}}
    <tr>
      <td style="padding: 4px 12px;">{{.SKU}}</td>
      <td style="padding: 4px 12px;">{{.Name}}</td>
      <td style="text-align: right; padding: 4px 12px;">{{.Quantity}}</td>
      <td style="text-align: right; padding: 4px 12px;">{{.MinStock}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`
