package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/qs3c/kidcare_server/config"
)

type Service struct {
	cfg  *config.EmailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// Attachment 邮件附件
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// InvoiceMail 发票邮件内容
type InvoiceMail struct {
	To            string
	CustomerName  string
	InvoiceNumber string
	TotalAmount   string
	DueDate       string
	DownloadURL   string // 归档失败时为空
	PDF           []byte // 渲染失败时为空
}

// ConfirmationMail 订阅确认邮件内容
type ConfirmationMail struct {
	To                 string
	ParentName         string
	ChildName          string
	ServiceName        string
	SubscriptionCode   string
	StartMonth         string
	Schedule           []string
	PricingDescription string
	FinalMonthlyPrice  string
}

// SendInvoice 发送发票邮件，PDF 存在时作为附件
func (s *Service) SendInvoice(m *InvoiceMail) error {
	subject := fmt.Sprintf("Invoice %s - %s", m.InvoiceNumber, s.siteName())

	link := ""
	if m.DownloadURL != "" {
		link = fmt.Sprintf(`<p>You can also <a href="%s">download your invoice</a>.</p>`, m.DownloadURL)
	}
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Invoice %s</h2>
        <p>Hello %s,</p>
        <p>Thank you for your registration. The amount due is <strong>%s</strong>, payable by %s.</p>
        %s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This email was sent automatically, please do not reply.</p>
    </div>
</body>
</html>
`, m.InvoiceNumber, m.CustomerName, m.TotalAmount, m.DueDate, link)

	var attachments []Attachment
	if len(m.PDF) > 0 {
		attachments = append(attachments, Attachment{
			Filename:    m.InvoiceNumber + ".pdf",
			ContentType: "application/pdf",
			Data:        m.PDF,
		})
	}

	msg, err := s.buildMessage(m.To, subject, body, attachments)
	if err != nil {
		return err
	}
	return s.deliver(m.To, msg)
}

// SendSubscriptionConfirmation 发送订阅确认邮件
func (s *Service) SendSubscriptionConfirmation(m *ConfirmationMail) error {
	subject := fmt.Sprintf("Subscription %s confirmed - %s", m.SubscriptionCode, s.siteName())

	var days strings.Builder
	for _, line := range m.Schedule {
		days.WriteString("<li>" + line + "</li>")
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Subscription received</h2>
        <p>Hello %s,</p>
        <p>We have received the subscription for <strong>%s</strong> to %s starting %s.</p>
        <p>Reference: <strong>%s</strong></p>
        <p>Weekly schedule:</p>
        <ul>%s</ul>
        <p>%s</p>
        <p>Monthly price: <strong>%s</strong></p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This email was sent automatically, please do not reply.</p>
    </div>
</body>
</html>
`, m.ParentName, m.ChildName, m.ServiceName, m.StartMonth, m.SubscriptionCode,
		days.String(), m.PricingDescription, m.FinalMonthlyPrice)

	msg, err := s.buildMessage(m.To, subject, body, nil)
	if err != nil {
		return err
	}
	return s.deliver(m.To, msg)
}

func (s *Service) siteName() string {
	if s.cfg.SiteName == "" {
		return "Kidcare"
	}
	return s.cfg.SiteName
}

// buildMessage 组装 MIME 邮件，没有附件时为单一 HTML 正文
func (s *Service) buildMessage(to, subject, htmlBody string, attachments []Attachment) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader := func(k, v string) {
		buf.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}

	writeHeader("From", s.cfg.From)
	writeHeader("To", to)
	writeHeader("Subject", mime.QEncoding.Encode("UTF-8", subject))
	writeHeader("MIME-Version", "1.0")

	if len(attachments) == 0 {
		writeHeader("Content-Type", "text/html; charset=UTF-8")
		buf.WriteString("\r\n")
		buf.WriteString(htmlBody)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	writeHeader("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mw.Boundary()))
	buf.WriteString("\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	for _, a := range attachments {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {a.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", a.Filename)},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 按 76 字符换行写入 base64
func writeBase64(w interface{ Write([]byte) (int, error) }, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := w.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := w.Write([]byte(encoded + "\r\n"))
	return err
}

func (s *Service) deliver(to string, msg []byte) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp host not configured")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
