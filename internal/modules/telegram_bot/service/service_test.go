package service

import (
	"context"
	"errors"
	"testing"
	"trade_assistant/internal/conversation"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeBot struct {
	sent []tgbot.MessageConfig
	errs []error
}

func (f *fakeBot) Send(c tgbot.Chattable) (tgbot.Message, error) {
	f.sent = append(f.sent, c.(tgbot.MessageConfig))
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return tgbot.Message{}, err
	}
	return tgbot.Message{MessageID: len(f.sent)}, nil
}

func TestReplyKeyboards(t *testing.T) {
	tests := []struct {
		name  string
		kb    conversation.Keyboard
		check func(t *testing.T, markup any)
	}{
		{"none", conversation.KeyboardNone, func(t *testing.T, markup any) {
			if markup != nil {
				t.Fatalf("unexpected markup %#v", markup)
			}
		}},
		{"confirm", conversation.KeyboardConfirm, func(t *testing.T, markup any) {
			kb, ok := markup.(tgbot.ReplyKeyboardMarkup)
			if !ok || len(kb.Keyboard) != 1 || kb.Keyboard[0][0].Text != "confirm" || kb.Keyboard[0][1].Text != "/cancel" {
				t.Fatalf("unexpected markup %#v", markup)
			}
		}},
		{"intervals", conversation.KeyboardIntervals, func(t *testing.T, markup any) {
			kb, ok := markup.(tgbot.ReplyKeyboardMarkup)
			if !ok || len(kb.Keyboard) != 2 || len(kb.Keyboard[0]) != 5 || kb.Keyboard[1][4].Text != "1mon" {
				t.Fatalf("unexpected markup %#v", markup)
			}
		}},
		{"remove", conversation.KeyboardRemove, func(t *testing.T, markup any) {
			kb, ok := markup.(tgbot.ReplyKeyboardRemove)
			if !ok || !kb.RemoveKeyboard {
				t.Fatalf("unexpected markup %#v", markup)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &fakeBot{}
			s := &Sender{bot: bot}
			if _, err := s.Reply(context.Background(), 1, "hi", tt.kb); err != nil {
				t.Fatalf("Reply: %v", err)
			}
			if len(bot.sent) != 1 || bot.sent[0].ParseMode != tgbot.ModeHTML {
				t.Fatalf("unexpected send %+v", bot.sent)
			}
			tt.check(t, bot.sent[0].ReplyMarkup)
		})
	}
}

func TestReplyFallsBackToPlainText(t *testing.T) {
	bot := &fakeBot{errs: []error{errors.New("Bad Request: can't parse entities: unsupported start tag")}}
	s := &Sender{bot: bot}

	if _, err := s.Send(context.Background(), 1, "price <1"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(bot.sent) != 2 || bot.sent[1].ParseMode != "" {
		t.Fatalf("expected plain retry, got %+v", bot.sent)
	}
}

func TestReplyOtherErrorsAreReturned(t *testing.T) {
	bot := &fakeBot{errs: []error{errors.New("Forbidden: bot was blocked by the user")}}
	s := &Sender{bot: bot}

	if _, err := s.Send(context.Background(), 1, "hi"); err == nil {
		t.Fatal("expected error")
	}
	if len(bot.sent) != 1 {
		t.Fatalf("no retry expected, got %d sends", len(bot.sent))
	}
}

type call struct {
	chatID  int64
	command string
	text    string
}

type fakeRouter struct {
	commands []call
	texts    []call
}

func (r *fakeRouter) HandleCommand(_ context.Context, chatID int64, command, text string) {
	r.commands = append(r.commands, call{chatID, command, text})
}

func (r *fakeRouter) HandleText(_ context.Context, chatID int64, text string) {
	r.texts = append(r.texts, call{chatID: chatID, text: text})
}

func TestHandleUpdateRouting(t *testing.T) {
	r := &fakeRouter{}
	tg := &Telegram{router: r}
	ctx := context.Background()

	tg.handleUpdate(ctx, tgbot.Update{Message: &tgbot.Message{
		Text:     "/strong_buy",
		Chat:     &tgbot.Chat{ID: 5},
		Entities: []tgbot.MessageEntity{{Type: "bot_command", Offset: 0, Length: 11}},
	}})
	tg.handleUpdate(ctx, tgbot.Update{Message: &tgbot.Message{Text: "confirm", Chat: &tgbot.Chat{ID: 5}}})
	tg.handleUpdate(ctx, tgbot.Update{Message: &tgbot.Message{Chat: &tgbot.Chat{ID: 5}}}) // стикер, без текста
	tg.handleUpdate(ctx, tgbot.Update{})

	if len(r.commands) != 1 || r.commands[0] != (call{5, "strong_buy", "/strong_buy"}) {
		t.Fatalf("commands = %+v", r.commands)
	}
	if len(r.texts) != 1 || r.texts[0].text != "confirm" {
		t.Fatalf("texts = %+v", r.texts)
	}
}
