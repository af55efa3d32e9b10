// Package notify 寄送潛在客戶通知 (SMTP 郵件與 Telegram)
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cast"
	"github.com/wneessen/go-mail"

	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// ErrNotConfigured 整合未啟用或缺少必要欄位
var ErrNotConfigured = errors.New("integration not configured")

// SMTP TLS 模式
const (
	TLSStartTLS = "starttls"
	TLSSSL      = "ssl"
	TLSNone     = "none"
)

// SMTPConfig 由 smtp 整合設定解析而來
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	TLS         string
}

// SMTPConfigFromIntegration 驗證並轉換 smtp 整合設定
func SMTPConfigFromIntegration(in model.Integration) (SMTPConfig, error) {
	if in.Provider != model.ProviderSMTP || !in.Enabled {
		return SMTPConfig{}, ErrNotConfigured
	}
	cfg := SMTPConfig{
		Host:        in.Config["host"],
		Port:        587,
		Username:    in.Config["username"],
		Password:    in.Config["password"],
		FromAddress: in.Config["from_address"],
		FromName:    in.Config["from_name"],
		TLS:         strings.ToLower(in.Config["tls"]),
	}
	if p := in.Config["port"]; p != "" {
		port, err := cast.ToIntE(p)
		if err != nil || port <= 0 || port > 65535 {
			return SMTPConfig{}, fmt.Errorf("invalid smtp port %q", p)
		}
		cfg.Port = port
	}
	if cfg.TLS == "" {
		cfg.TLS = TLSStartTLS
	}
	if cfg.Host == "" || cfg.FromAddress == "" {
		return SMTPConfig{}, fmt.Errorf("%w: smtp host and from_address are required", ErrNotConfigured)
	}
	return cfg, nil
}

// Message 單封郵件
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender 寄送郵件，測試時以假實作替換
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// 測試可替換
var dialAndSend = func(ctx context.Context, c *mail.Client, msgs ...*mail.Msg) error {
	return c.DialAndSendWithContext(ctx, msgs...)
}

// Mailer 以 go-mail 透過 SMTP 寄信，暫時性錯誤會重試
type Mailer struct {
	cfg      SMTPConfig
	attempts uint
	delay    time.Duration
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, attempts: 3, delay: time.Second}
}

func (m *Mailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}
	switch m.cfg.TLS {
	case TLSSSL:
		opts = append(opts, mail.WithSSL())
	case TLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

func (m *Mailer) build(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	var err error
	if m.cfg.FromName != "" {
		err = out.FromFormat(m.cfg.FromName, m.cfg.FromAddress)
	} else {
		err = out.From(m.cfg.FromAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return out, nil
}

// Send 寄出郵件；SMTP 永久性錯誤 (5xx) 不重試
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	client, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return retry.Do(
		func() error { return dialAndSend(ctx, client, out) },
		retry.Context(ctx),
		retry.Attempts(m.attempts),
		retry.Delay(m.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

func isTransient(err error) bool {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return sendErr.IsTemp()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
