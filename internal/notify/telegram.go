package notify

import (
	"fmt"

	"github.com/spf13/cast"
	tele "gopkg.in/telebot.v3"

	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// Telegram 將通知送到固定的聊天室
type Telegram struct {
	bot  *tele.Bot
	chat tele.ChatID
}

// 測試可替換
var (
	newBot      = tele.NewBot
	sendMessage = func(b *tele.Bot, to tele.Recipient, text string) error {
		_, err := b.Send(to, text, tele.ModeHTML, tele.NoPreview)
		return err
	}
)

// NewTelegram 由 telegram 整合設定建立；Offline 模式不會在建立時呼叫 getMe
func NewTelegram(in model.Integration) (*Telegram, error) {
	if in.Provider != model.ProviderTelegram || !in.Enabled {
		return nil, ErrNotConfigured
	}
	token := in.Config["bot_token"]
	chatID, err := cast.ToInt64E(in.Config["chat_id"])
	if token == "" || err != nil || chatID == 0 {
		return nil, fmt.Errorf("%w: telegram bot_token and numeric chat_id are required", ErrNotConfigured)
	}
	bot, err := newBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chat: tele.ChatID(chatID)}, nil
}

// Send 以 HTML 模式送出訊息
func (t *Telegram) Send(text string) error {
	return sendMessage(t.bot, t.chat, text)
}
