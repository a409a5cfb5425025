package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	act, ok := ParseAction("shop_select_12")
	require.True(t, ok)
	require.Equal(t, Action{Prefix: "shop", Verb: VerbSelect, Value: "12"}, act)

	act, ok = ParseAction("urgency_page_0")
	require.True(t, ok)
	require.Equal(t, Action{Prefix: "urgency", Verb: VerbPage, Value: "0"}, act)
}

func TestParseActionValueKeepsUnderscores(t *testing.T) {
	act, ok := ParseAction("work_select_1_2_3")
	require.True(t, ok)
	require.Equal(t, "1_2_3", act.Value)
}

func TestParseActionRejectsMalformed(t *testing.T) {
	for _, data := range []string{"", "noop", "shop", "shop_select", "shop_select_", "_select_1", "shop_frobnicate_1"} {
		_, ok := ParseAction(data)
		require.Falsef(t, ok, "data=%q", data)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	act, ok := ParseAction(SelectData(PrefixContractor, 77))
	require.True(t, ok)
	require.Equal(t, Action{Prefix: "contractor", Verb: VerbSelect, Value: "77"}, act)

	act, ok = ParseAction(PageData(PrefixShop, 4))
	require.True(t, ok)
	require.Equal(t, Action{Prefix: "shop", Verb: VerbPage, Value: "4"}, act)
}
