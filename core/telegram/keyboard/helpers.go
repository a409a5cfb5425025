package keyboard

import tele "gopkg.in/telebot.v4"

// Btn describes an inline button carrying raw callback data.
// Data is sent verbatim, without telebot unique-prefix framing, so flat
// action strings arrive at the generic callback endpoint unchanged.
type Btn struct {
	Text string
	Data string
}

// Inline builds an inline keyboard markup from rows of Btn.
func Inline(rows ...[]Btn) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline[i] = r
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// Chunk splits a flat list of buttons into rows with up to n buttons per row.
func Chunk(buttons []Btn, n int) [][]Btn {
	if n <= 1 {
		out := make([][]Btn, 0, len(buttons))
		for _, b := range buttons {
			out = append(out, []Btn{b})
		}
		return out
	}
	var rows [][]Btn
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
