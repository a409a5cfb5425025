package flow

import (
	"fmt"

	"github.com/Growstale/RequestHandlerWebServer/core/telegram/keyboard"
	"github.com/Growstale/RequestHandlerWebServer/internal/backend"

	tele "gopkg.in/telebot.v4"
)

const (
	// PageSize is the number of options shown per page.
	PageSize = 8
	// buttonsPerRow controls how selectable options are chunked.
	buttonsPerRow = 2

	prevLabel = "⬅️ Назад"
	nextLabel = "Вперед ➡️"
)

// Page is one rendered view over an option list.
type Page struct {
	Buttons [][]keyboard.Btn
	HasPrev bool
	HasNext bool
	Label   string
	Index   int
	Total   int
}

// BuildPage renders one page of options for the given prefix.
// An out-of-range index is clamped into the valid page range, so stale
// navigation buttons can never address past the end of the list.
func BuildPage(items []backend.Option, page int, prefix string) Page {
	total := (len(items) + PageSize - 1) / PageSize
	if total < 1 {
		total = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= total {
		page = total - 1
	}

	start := page * PageSize
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}

	btns := make([]keyboard.Btn, 0, end-start)
	for _, it := range items[start:end] {
		btns = append(btns, keyboard.Btn{
			Text: it.Label,
			Data: SelectData(prefix, it.ID),
		})
	}

	return Page{
		Buttons: keyboard.Chunk(btns, buttonsPerRow),
		HasPrev: page > 0,
		HasNext: end < len(items),
		Label:   fmt.Sprintf("%d/%d", page+1, total),
		Index:   page,
		Total:   total,
	}
}

// Markup converts a Page into a Telegram inline keyboard, appending the
// navigation row when applicable.
func (p Page) Markup(prefix string) *tele.ReplyMarkup {
	rows := p.Buttons

	var nav []keyboard.Btn
	if p.HasPrev {
		nav = append(nav, keyboard.Btn{Text: prevLabel, Data: PageData(prefix, p.Index-1)})
	}
	if p.Total > 1 {
		nav = append(nav, keyboard.Btn{Text: p.Label, Data: Noop})
	}
	if p.HasNext {
		nav = append(nav, keyboard.Btn{Text: nextLabel, Data: PageData(prefix, p.Index+1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return keyboard.Inline(rows...)
}
