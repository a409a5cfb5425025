package flow

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	coreconfig "github.com/Growstale/RequestHandlerWebServer/core/config"
	"github.com/Growstale/RequestHandlerWebServer/core/telegram/state"
	"github.com/Growstale/RequestHandlerWebServer/internal/backend"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the slice of tele.Context the flow touches,
// recording outgoing messages instead of hitting Telegram.
type fakeContext struct {
	tele.Context

	sender *tele.User
	chat   *tele.Chat
	text   string
	cb     *tele.Callback
	store  map[string]any

	sent     []string
	sendMk   []*tele.ReplyMarkup
	edits    []string
	editMk   []*tele.ReplyMarkup
	responds []*tele.CallbackResponse
}

func newFakeContext(chatType tele.ChatType, chatID, userID int64) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID},
		chat:   &tele.Chat{ID: chatID, Type: chatType},
		store:  make(map[string]any),
	}
}

func (f *fakeContext) Update() tele.Update {
	return tele.Update{ID: 1, Callback: f.cb}
}

func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Chat() *tele.Chat         { return f.chat }
func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.cb }

func (f *fakeContext) Get(key string) any      { return f.store[key] }
func (f *fakeContext) Set(key string, val any) { f.store[key] = val }

func extractMarkup(opts []any) *tele.ReplyMarkup {
	for _, o := range opts {
		if mk, ok := o.(*tele.ReplyMarkup); ok {
			return mk
		}
	}
	return nil
}

func (f *fakeContext) Send(what any, opts ...any) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	f.sendMk = append(f.sendMk, extractMarkup(opts))
	return nil
}

func (f *fakeContext) Edit(what any, opts ...any) error {
	f.edits = append(f.edits, fmt.Sprint(what))
	f.editMk = append(f.editMk, extractMarkup(opts))
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		f.responds = append(f.responds, &tele.CallbackResponse{})
		return nil
	}
	f.responds = append(f.responds, resp...)
	return nil
}

func (f *fakeContext) lastSent(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

// fixture is a scripted backend the gateway talks to.
type fixture struct {
	role         string
	chatLinked   bool
	urgencyLabel string
	shopCount    int
	healthCode   int

	created map[string]any
}

func newFixture() *fixture {
	return &fixture{
		role:         "RetailAdmin",
		chatLinked:   true,
		urgencyLabel: "Normal",
		shopCount:    1,
		healthCode:   http.StatusOK,
	}
}

func (fx *fixture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/bot/user/telegram/"):
		writeJSON(map[string]any{"userID": 1, "roleName": fx.role})
	case strings.HasPrefix(r.URL.Path, "/api/bot/chat/"):
		if !fx.chatLinked {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(map[string]any{
			"shopID": 3, "shopName": "Store A",
			"contractorID": 7, "contractorLogin": "BuilderCo",
		})
	case r.URL.Path == "/api/shops":
		shops := make([]map[string]any, 0, fx.shopCount)
		for i := 0; i < fx.shopCount; i++ {
			shops = append(shops, map[string]any{"shopID": 3 + i, "shopName": fmt.Sprintf("Store %c", 'A'+i)})
		}
		writeJSON(map[string]any{"content": shops})
	case r.URL.Path == "/api/user/contractors":
		writeJSON([]map[string]any{{"userID": 7, "login": "BuilderCo"}})
	case r.URL.Path == "/api/work-categories":
		writeJSON(map[string]any{"content": []map[string]any{
			{"workCategoryID": 2, "workCategoryName": "Plumbing"},
		}})
	case r.URL.Path == "/api/urgency-categories":
		writeJSON([]map[string]any{{"urgencyID": 9, "urgencyName": fx.urgencyLabel}})
	case r.URL.Path == "/api/bot/requests":
		fx.created = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&fx.created)
		writeJSON(map[string]any{"requestID": 555})
	case r.URL.Path == "/api/bot/health":
		w.WriteHeader(fx.healthCode)
		_, _ = w.Write([]byte(`{"status":"UP"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestFlow(t *testing.T, fx *fixture) *Flow {
	t.Helper()
	srv := httptest.NewServer(fx)
	t.Cleanup(srv.Close)
	client := backend.NewClient(coreconfig.BackendConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		TimeoutSeconds: 2,
		ListPageSize:   1000,
	})
	return New(client)
}

func keyOf(c *fakeContext) state.Key {
	return state.Key{UserID: c.sender.ID, ChatID: c.chat.ID}
}

func press(t *testing.T, f *Flow, prefix string, base *fakeContext, data string) *fakeContext {
	t.Helper()
	c := newFakeContext(base.chat.Type, base.chat.ID, base.sender.ID)
	c.cb = &tele.Callback{Data: data}
	require.NoError(t, f.CallbackHandler(prefix)(c))
	return c
}

func sendText(t *testing.T, f *Flow, base *fakeContext, text string) *fakeContext {
	t.Helper()
	c := newFakeContext(base.chat.Type, base.chat.ID, base.sender.ID)
	c.text = text
	require.NoError(t, f.Manager().ManagerHandler(c))
	return c
}

func TestFullFlowDirectChat(t *testing.T) {
	fx := newFixture()
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Start(start))
	require.Equal(t, promptShop, start.lastSent(t))
	require.NotNil(t, start.sendMk[len(start.sendMk)-1])
	require.Equal(t, "shop_select_3", start.sendMk[0].InlineKeyboard[0][0].Data)

	c := press(t, f, PrefixShop, start, "shop_select_3")
	require.Contains(t, c.edits[0], "Store A")
	require.Equal(t, promptContractor, c.lastSent(t))

	c = press(t, f, PrefixContractor, start, "contractor_select_7")
	require.Contains(t, c.edits[0], "BuilderCo")
	require.Equal(t, promptWorkCategory, c.lastSent(t))

	c = press(t, f, PrefixWorkCategory, start, "work_select_2")
	require.Equal(t, promptUrgency, c.lastSent(t))

	c = press(t, f, PrefixUrgency, start, "urgency_select_9")
	require.Equal(t, promptDescription, c.lastSent(t))

	c = sendText(t, f, start, "Leak in aisle 4")
	require.Contains(t, c.lastSent(t), "555")

	require.Equal(t, "Leak in aisle 4", fx.created["description"])
	require.Equal(t, float64(3), fx.created["shopID"])
	require.Equal(t, float64(7), fx.created["assignedContractorID"])
	require.Equal(t, float64(2), fx.created["workCategoryID"])
	require.Equal(t, float64(9), fx.created["urgencyID"])
	require.Equal(t, float64(1), fx.created["createdByUserID"])
	_, hasDays := fx.created["customDays"]
	require.False(t, hasDays)

	require.False(t, f.Manager().InProgress(100, 100))
}

func TestFullFlowCustomUrgency(t *testing.T) {
	fx := newFixture()
	fx.urgencyLabel = "Customizable"
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Start(start))
	press(t, f, PrefixShop, start, "shop_select_3")
	press(t, f, PrefixContractor, start, "contractor_select_7")
	press(t, f, PrefixWorkCategory, start, "work_select_2")
	press(t, f, PrefixUrgency, start, "urgency_select_9")

	c := sendText(t, f, start, "Leak in aisle 4")
	require.Equal(t, promptCustomDays, c.lastSent(t))

	for _, bad := range []string{"0", "366", "abc", ""} {
		c = sendText(t, f, start, bad)
		require.Equalf(t, msgInvalidDays, c.lastSent(t), "input=%q", bad)
	}

	c = sendText(t, f, start, "10")
	require.Contains(t, c.lastSent(t), "555")
	require.Equal(t, float64(10), fx.created["customDays"])
}

func TestCustomDaysInclusiveBounds(t *testing.T) {
	for _, valid := range []string{"1", "365"} {
		fx := newFixture()
		fx.urgencyLabel = "Customizable"
		f := newTestFlow(t, fx)

		start := newFakeContext(tele.ChatPrivate, 100, 100)
		require.NoError(t, f.Start(start))
		press(t, f, PrefixShop, start, "shop_select_3")
		press(t, f, PrefixContractor, start, "contractor_select_7")
		press(t, f, PrefixWorkCategory, start, "work_select_2")
		press(t, f, PrefixUrgency, start, "urgency_select_9")
		sendText(t, f, start, "desc")

		c := sendText(t, f, start, valid)
		require.Containsf(t, c.lastSent(t), "555", "input=%q", valid)
	}
}

func TestGroupChatPrefillsShopAndContractor(t *testing.T) {
	fx := newFixture()
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatGroup, -500, 100)
	require.NoError(t, f.Start(start))
	require.Equal(t, promptWorkCategory, start.lastSent(t))

	press(t, f, PrefixWorkCategory, start, "work_select_2")
	press(t, f, PrefixUrgency, start, "urgency_select_9")
	c := sendText(t, f, start, "Broken shelf")
	require.Contains(t, c.lastSent(t), "555")

	require.Equal(t, float64(3), fx.created["shopID"])
	require.Equal(t, float64(7), fx.created["assignedContractorID"])
}

func TestGroupChatNotLinkedAborts(t *testing.T) {
	fx := newFixture()
	fx.chatLinked = false
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatGroup, -500, 100)
	require.NoError(t, f.Start(start))
	require.Equal(t, msgChatNotLinked, start.lastSent(t))
	require.False(t, f.Manager().InProgress(100, -500))
}

func TestPermissionDenied(t *testing.T) {
	fx := newFixture()
	fx.role = "Employee"
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Start(start))
	require.Equal(t, msgPermissionDenied, start.lastSent(t))
	require.False(t, f.Manager().InProgress(100, 100))
}

func TestPagingDoesNotMutatePending(t *testing.T) {
	fx := newFixture()
	fx.shopCount = 20 // 3 pages
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Start(start))

	c := press(t, f, PrefixShop, start, "shop_page_1")
	require.NotEmpty(t, c.edits)
	require.Equal(t, promptShop, c.edits[0])
	nav := c.editMk[0].InlineKeyboard[len(c.editMk[0].InlineKeyboard)-1]
	require.Equal(t, "2/3", nav[1].Text)

	// Still awaiting a shop selection.
	sess := f.Manager().Get(keyOf(start))
	require.NotNil(t, sess)
	require.Equal(t, StateSelectShop, sess.State)
	require.Zero(t, sess.Data.Pending.ShopID)
}

func TestStaleSelectionRefreshesMenu(t *testing.T) {
	fx := newFixture()
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Start(start))

	c := press(t, f, PrefixShop, start, "shop_select_999")
	require.NotEmpty(t, c.responds)
	last := c.responds[len(c.responds)-1]
	require.True(t, last.ShowAlert)
	require.Equal(t, msgStaleSelection, last.Text)

	sess := f.Manager().Get(keyOf(start))
	require.NotNil(t, sess)
	require.Equal(t, StateSelectShop, sess.State)
	require.Zero(t, sess.Data.Pending.ShopID)
}

func TestCancelFromAnyState(t *testing.T) {
	fx := newFixture()
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Start(start))
	press(t, f, PrefixShop, start, "shop_select_3")

	cancel := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Cancel(cancel))
	require.Equal(t, msgCancelled, cancel.lastSent(t))
	require.False(t, f.Manager().InProgress(100, 100))

	again := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Cancel(again))
	require.Equal(t, msgNothingToCancel, again.lastSent(t))

	// Buttons of the dead conversation no longer do anything.
	c := press(t, f, PrefixContractor, start, "contractor_select_7")
	require.NotEmpty(t, c.responds)
	require.Equal(t, msgSessionExpired, c.responds[len(c.responds)-1].Text)
}

func TestLoadFailureAbortsFlow(t *testing.T) {
	fx := newFixture()
	fx.shopCount = 0
	f := newTestFlow(t, fx)

	start := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.Start(start))
	require.Equal(t, msgLoadFailed, start.lastSent(t))
	require.False(t, f.Manager().InProgress(100, 100))
}

func TestHealthMessagesDistinguishFailures(t *testing.T) {
	results := make(map[int]string)
	for _, code := range []int{http.StatusOK, http.StatusUnauthorized, http.StatusForbidden, http.StatusBadGateway} {
		fx := newFixture()
		fx.healthCode = code
		f := newTestFlow(t, fx)

		c := newFakeContext(tele.ChatPrivate, 100, 100)
		require.NoError(t, f.HealthHandler(c))
		require.Len(t, c.sent, 2)
		results[code] = c.sent[1]
	}

	require.Contains(t, results[http.StatusUnauthorized], "401")
	require.Contains(t, results[http.StatusForbidden], "403")
	require.NotEqual(t, results[http.StatusUnauthorized], results[http.StatusForbidden])
	require.NotEqual(t, results[http.StatusForbidden], results[http.StatusBadGateway])
}

func TestHealthUnreachable(t *testing.T) {
	client := backend.NewClient(coreconfig.BackendConfig{
		BaseURL:        "http://127.0.0.1:1",
		APIKey:         "k",
		TimeoutSeconds: 1,
	})
	f := New(client)

	c := newFakeContext(tele.ChatPrivate, 100, 100)
	require.NoError(t, f.HealthHandler(c))
	require.Len(t, c.sent, 2)
	require.Contains(t, c.sent[1], "Ошибка подключения")
}
