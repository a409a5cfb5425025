package flow

import (
	"fmt"
	"testing"

	"github.com/Growstale/RequestHandlerWebServer/internal/backend"
	"github.com/stretchr/testify/require"
)

func makeOptions(n int) []backend.Option {
	opts := make([]backend.Option, 0, n)
	for i := 1; i <= n; i++ {
		opts = append(opts, backend.Option{ID: int64(i), Label: fmt.Sprintf("Item %d", i)})
	}
	return opts
}

func TestBuildPageTotals(t *testing.T) {
	cases := []struct {
		items int
		total int
	}{
		{0, 1},
		{1, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
	}
	for _, tc := range cases {
		p := BuildPage(makeOptions(tc.items), 0, PrefixShop)
		require.Equalf(t, tc.total, p.Total, "items=%d", tc.items)
	}
}

func TestBuildPageNavPresence(t *testing.T) {
	items := makeOptions(20) // 3 pages

	p0 := BuildPage(items, 0, PrefixShop)
	require.False(t, p0.HasPrev)
	require.True(t, p0.HasNext)
	require.Equal(t, "1/3", p0.Label)

	p1 := BuildPage(items, 1, PrefixShop)
	require.True(t, p1.HasPrev)
	require.True(t, p1.HasNext)
	require.Equal(t, "2/3", p1.Label)

	p2 := BuildPage(items, 2, PrefixShop)
	require.True(t, p2.HasPrev)
	require.False(t, p2.HasNext)
	require.Equal(t, "3/3", p2.Label)
}

func TestBuildPageClampsIndex(t *testing.T) {
	items := makeOptions(10) // 2 pages

	p := BuildPage(items, 99, PrefixShop)
	require.Equal(t, 1, p.Index)
	require.Equal(t, "2/2", p.Label)

	p = BuildPage(items, -5, PrefixShop)
	require.Equal(t, 0, p.Index)
}

func TestBuildPageTwoPerRow(t *testing.T) {
	p := BuildPage(makeOptions(5), 0, PrefixShop)
	require.Len(t, p.Buttons, 3)
	require.Len(t, p.Buttons[0], 2)
	require.Len(t, p.Buttons[1], 2)
	require.Len(t, p.Buttons[2], 1)
	require.Equal(t, "Item 1", p.Buttons[0][0].Text)
	require.Equal(t, "shop_select_1", p.Buttons[0][0].Data)
}

func TestPageMarkupNavigationRow(t *testing.T) {
	items := makeOptions(20)
	p := BuildPage(items, 1, PrefixUrgency)
	m := p.Markup(PrefixUrgency)

	require.NotEmpty(t, m.InlineKeyboard)
	nav := m.InlineKeyboard[len(m.InlineKeyboard)-1]
	require.Len(t, nav, 3)
	require.Equal(t, "urgency_page_0", nav[0].Data)
	require.Equal(t, "2/3", nav[1].Text)
	require.Equal(t, Noop, nav[1].Data)
	require.Equal(t, "urgency_page_2", nav[2].Data)
}

func TestPageMarkupSinglePageHasNoNav(t *testing.T) {
	p := BuildPage(makeOptions(4), 0, PrefixShop)
	m := p.Markup(PrefixShop)
	// Only option rows, no navigation row.
	require.Len(t, m.InlineKeyboard, 2)
	for _, row := range m.InlineKeyboard {
		for _, btn := range row {
			require.NotEqual(t, Noop, btn.Data)
		}
	}
}
