package bot

import "context"

// Button is one inline keyboard button. Callback carries raw callback data
// in "key" or "key:arg" form; URL buttons open a link instead.
type Button struct {
	Text     string
	Callback string
	URL      string
}

// Keyboard is rows of inline buttons.
type Keyboard [][]Button

// Messenger delivers HTML messages to chats. The telebot adapter implements
// it in production; tests capture messages directly.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, kb Keyboard) error
}

// Row builds a single keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}
