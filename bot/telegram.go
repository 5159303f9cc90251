package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	tg "payoutbot/core/telegram"
	"payoutbot/core/telegram/commands"
	"payoutbot/core/telegram/helpers"
	"payoutbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// ErrNoTransport means the messenger was asked to deliver before the
// Telegram bot was attached.
var ErrNoTransport = errors.New("bot: telegram transport not attached")

type teleCtxKey struct{}

// updateContext builds the service context for an update and embeds the
// telebot context so replies can ride the async sender.
func (b *Bot) updateContext(c tele.Context) context.Context {
	ctx := helpers.BuildContext(c)
	return context.WithValue(ctx, teleCtxKey{}, c)
}

func teleContextFrom(ctx context.Context) (tele.Context, bool) {
	c, ok := ctx.Value(teleCtxKey{}).(tele.Context)
	return c, ok
}

func chatIDOf(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func markupFrom(kb Keyboard) *tele.ReplyMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, len(kb))
	for i, row := range kb {
		r := make([]keyboard.InlineBtn, len(row))
		for j, btn := range row {
			r[j] = keyboard.InlineBtn{Text: btn.Text, Callback: btn.Callback, URL: btn.URL}
		}
		rows[i] = r
	}
	return keyboard.InlineButtonsRows(rows...)
}

// TelebotMessenger delivers messages through telebot. Replies to a live
// update reuse its context and go through the async sender; out-of-band
// messages (deposit notifications) are sent directly by chat id.
type TelebotMessenger struct {
	bot atomic.Pointer[tele.Bot]
}

// NewTelebotMessenger returns a messenger without a transport attached.
func NewTelebotMessenger() *TelebotMessenger {
	return &TelebotMessenger{}
}

// Attach wires the live bot once the Telegram runtime is up.
func (m *TelebotMessenger) Attach(bot *tele.Bot) {
	m.bot.Store(bot)
}

// Send implements Messenger.
func (m *TelebotMessenger) Send(ctx context.Context, chatID int64, text string, kb Keyboard) error {
	markup := markupFrom(kb)
	if c, ok := teleContextFrom(ctx); ok && chatIDOf(c) == chatID {
		if markup != nil {
			return helpers.SendHTML(c, text, markup)
		}
		return helpers.SendHTML(c, text)
	}

	bot := m.bot.Load()
	if bot == nil {
		return ErrNoTransport
	}
	_, err := bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: markup,
	})
	return err
}

// NotifySender adapts the messenger to the notification service, which
// sends plain HTML without keyboards.
type NotifySender struct {
	M *TelebotMessenger
}

// Send implements notify.Messenger.
func (n NotifySender) Send(ctx context.Context, chatID int64, text string) error {
	return n.M.Send(ctx, chatID, text, nil)
}

// BuildRegistry exposes the bot's command and callback tables to the
// Telegram routing layer.
func (b *Bot) BuildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	for name, def := range b.commands {
		cmdName := name
		reg.RegisterCommand("/"+name, commands.Command{
			Handler: func(c tele.Context) error {
				return b.HandleCommand(b.updateContext(c), chatIDOf(c), cmdName)
			},
			Description: def.Description,
			Exempt:      def.Gate != gateKYC,
			Hidden:      def.Hidden,
		})
	}

	for key := range b.callbacks {
		cbKey := key
		_ = reg.RegisterCallback(cbKey, func(c tele.Context, args []string) error {
			return b.HandleCallback(b.updateContext(c), chatIDOf(c), cbKey, args)
		})
	}

	reg.SetCallbackNotFound(func(c tele.Context) error {
		return helpers.SendHTML(c, genericErrorMessage)
	})
	reg.SetTextFallback(func(c tele.Context) error {
		return b.HandleText(b.updateContext(c), chatIDOf(c), c.Text())
	})
	return reg
}

// FSMAdapter routes free text from the router into the state machine.
type FSMAdapter struct {
	B *Bot
}

// InProgress implements router.FSM.
func (f FSMAdapter) InProgress(c tele.Context) bool {
	return f.B.InProgress(f.B.updateContext(c), chatIDOf(c))
}

// HandleText implements router.FSM.
func (f FSMAdapter) HandleText(c tele.Context) error {
	return f.B.HandleText(f.B.updateContext(c), chatIDOf(c), c.Text())
}

// Guard returns the wrapper applied to non-exempt command routes. Gated
// handlers only run for authenticated, KYC-verified chats.
func (b *Bot) Guard() func(next tele.HandlerFunc) tele.HandlerFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ok, err := b.allow(b.updateContext(c), chatIDOf(c), gateKYC, "this feature")
			if err != nil || !ok {
				return err
			}
			return next(c)
		}
	}
}

// OnRateLimited builds the reply sent when a chat exhausts its window.
func (b *Bot) OnRateLimited() func(c tele.Context, retryAfter time.Duration) error {
	return func(c tele.Context, retryAfter time.Duration) error {
		secs := int(retryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		return helpers.SendHTML(c, rateLimitExceededMessage(secs))
	}
}
