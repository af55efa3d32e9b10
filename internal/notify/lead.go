package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/logger"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
	"github.com/A123lny/o2o-catalogo-sub002/internal/service"
	"github.com/A123lny/o2o-catalogo-sub002/internal/store"
	"github.com/A123lny/o2o-catalogo-sub002/internal/worker"
)

// 測試可替換
var (
	listIntegrations    = store.ListIntegrations
	loadGeneralSettings = service.LoadGeneralSettings
)

// TextSender 傳送純文字訊息的通道 (例如 Telegram)
type TextSender interface {
	Send(text string) error
}

// LeadNotifier 在新需求建立後通知管理員與客戶
type LeadNotifier struct {
	db      database.DB
	pool    worker.Pool
	log     logger.ILogger
	timeout time.Duration

	newMailer   func(model.Integration) (Sender, error)
	newTelegram func(model.Integration) (TextSender, error)
}

func NewLeadNotifier(db database.DB, pool worker.Pool, log logger.ILogger) *LeadNotifier {
	return &LeadNotifier{
		db:          db,
		pool:        pool,
		log:         log,
		timeout:     time.Minute,
		newMailer:   MailerFromIntegration,
		newTelegram: TelegramFromIntegration,
	}
}

// MailerFromIntegration 由 smtp 整合建立 Sender
func MailerFromIntegration(in model.Integration) (Sender, error) {
	cfg, err := SMTPConfigFromIntegration(in)
	if err != nil {
		return nil, err
	}
	return NewMailer(cfg), nil
}

// TelegramFromIntegration 由 telegram 整合建立 TextSender
func TelegramFromIntegration(in model.Integration) (TextSender, error) {
	tg, err := NewTelegram(in)
	if err != nil {
		return nil, err
	}
	return tg, nil
}

// Dispatch 將通知排入背景工作池；失敗只記錄，不影響送出表單的使用者
func (n *LeadNotifier) Dispatch(r model.Request) {
	err := n.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.Notify(ctx, r); err != nil {
			n.log.Error("潛在客戶通知失敗",
				logger.String("reference", r.Reference),
				logger.Error(err),
			)
		}
	})
	if err != nil {
		n.log.Warning("無法排入通知工作", logger.String("reference", r.Reference), logger.Error(err))
	}
}

// Notify 同步寄送所有啟用中的通知，回傳合併後的錯誤
func (n *LeadNotifier) Notify(ctx context.Context, r model.Request) error {
	integrations, err := listIntegrations(ctx, n.db, "")
	if err != nil {
		return err
	}
	general, err := loadGeneralSettings(ctx, n.db)
	if err != nil {
		return err
	}

	var errs []error
	for _, in := range integrations {
		if !in.Enabled {
			continue
		}
		switch in.Provider {
		case model.ProviderSMTP:
			errs = append(errs, n.sendEmails(ctx, in, general, r))
		case model.ProviderTelegram:
			tg, err := n.newTelegram(in)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			errs = append(errs, tg.Send(TelegramText(general, r)))
		}
	}
	return errors.Join(errs...)
}

func (n *LeadNotifier) sendEmails(ctx context.Context, in model.Integration, general service.GeneralSettings, r model.Request) error {
	mailer, err := n.newMailer(in)
	if err != nil {
		return err
	}

	var errs []error
	if general.NotificationEmail != "" {
		errs = append(errs, mailer.Send(ctx, AdminEmail(general, r)))
	} else {
		n.log.Debug("未設定 notification_email，略過管理員通知", logger.String("reference", r.Reference))
	}
	if r.Email != "" {
		errs = append(errs, mailer.Send(ctx, CustomerEmail(general, r)))
	}
	return errors.Join(errs...)
}

var requestTypeLabels = map[string]string{
	model.RequestInfo:      "Richiesta informazioni",
	model.RequestTestDrive: "Prenotazione test drive",
	model.RequestQuote:     "Richiesta preventivo",
	model.RequestRental:    "Richiesta noleggio",
}

func typeLabel(t string) string {
	if l, ok := requestTypeLabels[t]; ok {
		return l
	}
	return t
}

func siteName(g service.GeneralSettings) string {
	if g.SiteName == "" {
		return "O2O Catalogo"
	}
	return g.SiteName
}

// AdminEmail 給管理員的新需求通知
func AdminEmail(g service.GeneralSettings, r model.Request) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", typeLabel(r.Type))
	fmt.Fprintf(&b, "Riferimento: %s\n", r.Reference)
	fmt.Fprintf(&b, "Nome: %s\n", r.FullName())
	fmt.Fprintf(&b, "Email: %s\n", r.Email)
	fmt.Fprintf(&b, "Telefono: %s\n", r.Phone)
	if r.VehicleTitle != "" {
		fmt.Fprintf(&b, "Veicolo: %s\n", r.VehicleTitle)
	}
	if r.ProvinceName != "" {
		fmt.Fprintf(&b, "Provincia: %s\n", r.ProvinceName)
	}
	fmt.Fprintf(&b, "Consenso marketing: %t\n", r.MarketingConsent)
	if r.Message != "" {
		fmt.Fprintf(&b, "\nMessaggio:\n%s\n", r.Message)
	}
	return Message{
		To:      []string{g.NotificationEmail},
		ReplyTo: r.Email,
		Subject: fmt.Sprintf("[%s] %s %s", siteName(g), typeLabel(r.Type), r.Reference),
		Text:    b.String(),
	}
}

// CustomerEmail 給客戶的收件確認
func CustomerEmail(g service.GeneralSettings, r model.Request) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Gentile %s,\n\n", r.FullName())
	fmt.Fprintf(&b, "abbiamo ricevuto la sua richiesta (%s", strings.ToLower(typeLabel(r.Type)))
	if r.VehicleTitle != "" {
		fmt.Fprintf(&b, " per %s", r.VehicleTitle)
	}
	fmt.Fprintf(&b, ").\nCodice di riferimento: %s\n\n", r.Reference)
	b.WriteString("Un nostro consulente la contatterà al più presto.\n")
	if g.ContactPhone != "" {
		fmt.Fprintf(&b, "Per urgenze può chiamarci al %s.\n", g.ContactPhone)
	}
	fmt.Fprintf(&b, "\n%s\n", siteName(g))

	msg := Message{
		To:      []string{r.Email},
		Subject: fmt.Sprintf("%s: abbiamo ricevuto la sua richiesta", siteName(g)),
		Text:    b.String(),
	}
	if g.ContactEmail != "" {
		msg.ReplyTo = g.ContactEmail
	}
	return msg
}

// TelegramText 給管理員群組的 HTML 訊息
func TelegramText(g service.GeneralSettings, r model.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> · %s\n", html.EscapeString(typeLabel(r.Type)), html.EscapeString(r.Reference))
	fmt.Fprintf(&b, "%s\n%s · %s\n", html.EscapeString(r.FullName()), html.EscapeString(r.Email), html.EscapeString(r.Phone))
	if r.VehicleTitle != "" {
		fmt.Fprintf(&b, "🚗 %s\n", html.EscapeString(r.VehicleTitle))
	}
	if r.ProvinceName != "" {
		fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(r.ProvinceName))
	}
	if r.Message != "" {
		fmt.Fprintf(&b, "\n%s", html.EscapeString(r.Message))
	}
	return b.String()
}

// TestIntegration 以實際寄送驗證 smtp / telegram 設定；其他類型僅檢查設定完整
func TestIntegration(ctx context.Context, in model.Integration, to, publicBaseURL string) error {
	switch in.Provider {
	case model.ProviderSMTP:
		mailer, err := MailerFromIntegration(in)
		if err != nil {
			return err
		}
		if to == "" {
			return errors.New("test recipient is required")
		}
		return mailer.Send(ctx, Message{
			To:      []string{to},
			Subject: "Email di prova",
			Text:    "Configurazione SMTP funzionante.",
		})
	case model.ProviderTelegram:
		tg, err := TelegramFromIntegration(in)
		if err != nil {
			return err
		}
		return tg.Send("✅ Notifiche Telegram attive")
	case model.ProviderGoogle, model.ProviderFacebook:
		_, err := service.NewSocialProvider(in, publicBaseURL)
		return err
	case model.ProviderStripe, model.ProviderPayPal:
		if !in.Enabled {
			return ErrNotConfigured
		}
		if len(service.PublicPaymentConfig(in)) == 0 {
			return fmt.Errorf("%w: missing publishable configuration", ErrNotConfigured)
		}
		return nil
	}
	return fmt.Errorf("unknown provider %q", in.Provider)
}
