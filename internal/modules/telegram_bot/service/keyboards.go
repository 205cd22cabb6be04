package service

import (
	"trade_assistant/internal/conversation"
	"trade_assistant/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const intervalsPerRow = 5

func keyboardMarkup(kb conversation.Keyboard) any {
	switch kb {
	case conversation.KeyboardConfirm:
		return confirmKeyboard()
	case conversation.KeyboardIntervals:
		return intervalsKeyboard()
	case conversation.KeyboardRemove:
		return tgbot.NewRemoveKeyboard(true)
	default:
		return nil
	}
}

func confirmKeyboard() tgbot.ReplyKeyboardMarkup {
	return tgbot.NewReplyKeyboard(
		tgbot.NewKeyboardButtonRow(
			tgbot.NewKeyboardButton("confirm"),
			tgbot.NewKeyboardButton("/cancel"),
		),
	)
}

func intervalsKeyboard() tgbot.ReplyKeyboardMarkup {
	var rows [][]tgbot.KeyboardButton
	var row []tgbot.KeyboardButton
	for _, iv := range models.Intervals {
		row = append(row, tgbot.NewKeyboardButton(iv))
		if len(row) == intervalsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbot.NewReplyKeyboard(rows...)
}
