package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

const implicitTLSPort = "465"

// SMTPSender delivers mail over SMTP. Port 465 uses implicit TLS, any other
// port upgrades with STARTTLS.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewSMTPSender(host, port, username, password, from string) (*SMTPSender, error) {
	if from == "" {
		from = username
	}
	if from == "" {
		return nil, ErrMissingSender
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  30 * time.Second,
	}, nil
}

var _ domain.Mailer = (*SMTPSender)(nil)

func (s *SMTPSender) Send(ctx context.Context, msg domain.Message) (domain.Receipt, error) {
	if msg.To == "" {
		return domain.Receipt{}, ErrMissingRecipient
	}

	messageID := uuid.NewString()
	body, err := buildMIMEMessage(s.from, messageID, s.host, msg)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to build message: %w", err)
	}

	client, err := s.dial(ctx)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer client.Close()

	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return domain.Receipt{}, fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := client.Mail(s.from); err != nil {
		return domain.Receipt{}, fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return domain.Receipt{}, fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to finish message: %w", err)
	}

	if err := client.Quit(); err != nil {
		slog.WarnContext(ctx, "smtp quit failed",
			slog.String("error", err.Error()),
		)
	}

	return domain.Receipt{ID: messageID}, nil
}

func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.host, s.port)
	dialer := &net.Dialer{Timeout: s.timeout}
	tlsConfig := &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}

	if s.port == implicitTLSPort {
		conn, err := (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, s.host)
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}

func buildMIMEMessage(from, messageID, host string, msg domain.Message) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", messageID, host)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if msg.Text == "" {
		buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
		buf.WriteString(msg.HTML)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	parts := []struct {
		contentType string
		body        string
	}{
		{contentType: "text/plain; charset=\"utf-8\"", body: msg.Text},
		{contentType: "text/html; charset=\"utf-8\"", body: msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
