package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Growstale/RequestHandlerWebServer/core/logger"
	tghelpers "github.com/Growstale/RequestHandlerWebServer/core/telegram/helpers"
	"github.com/Growstale/RequestHandlerWebServer/core/telegram/state"
	"github.com/Growstale/RequestHandlerWebServer/internal/backend"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RequiredRole is the backend role allowed to create requests.
const RequiredRole = "RetailAdmin"

// PendingRequest accumulates the answers of one conversation.
type PendingRequest struct {
	CreatorID       int64
	ShopID          int64
	ContractorID    int64
	WorkCategoryID  int64
	UrgencyID       int64
	IsCustomUrgency bool
	Description     string
	CustomDays      int
}

// Conversation is the session payload: the pending request plus the
// cached option list and page index of the step currently on screen.
type Conversation struct {
	Pending PendingRequest
	Options []backend.Option
	Page    int
}

// Flow drives the request-creation conversation: permission gate,
// chained selection steps, free-text steps and final submission.
type Flow struct {
	api *backend.Client
	mgr *state.Manager[Conversation]
}

// New wires a Flow to its backend gateway and registers the free-text
// state handlers.
func New(api *backend.Client) *Flow {
	f := &Flow{
		api: api,
		mgr: state.NewManager[Conversation](),
	}
	f.mgr.Handle(StateEnterDescription, f.handleDescription)
	f.mgr.Handle(StateEnterCustomDays, f.handleCustomDays)
	return f
}

// Manager exposes the session manager for text routing.
func (f *Flow) Manager() *state.Manager[Conversation] {
	return f.mgr
}

// GreetingMessage builds the /start reply for the given display name.
func GreetingMessage(name string) string {
	return fmt.Sprintf(msgGreeting, name)
}

// Start handles the /newrequest command: resolves the invoking user,
// checks the role, and enters either the group shortcut or the full
// manual flow.
func (f *Flow) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	k := state.KeyFrom(c)

	user, err := f.api.UserByTelegramID(ctx, k.UserID)
	if err != nil || user == nil || user.RoleName != RequiredRole {
		logger.LogEvent(ctx, logger.FLOW, slog.LevelInfo, "flow.denied",
			slog.String("status", "denied"),
			slog.Int64("user_id", k.UserID),
		)
		return c.Send(msgPermissionDenied)
	}

	f.mgr.Begin(k, StateSelectShop, &Conversation{
		Pending: PendingRequest{CreatorID: user.UserID},
	})
	logger.LogEvent(ctx, logger.FLOW, slog.LevelInfo, "flow.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", k.UserID),
		slog.Int64("chat_id", k.ChatID),
	)

	chat := c.Chat()
	if chat != nil && (chat.Type == tele.ChatGroup || chat.Type == tele.ChatSuperGroup) {
		assoc, err := f.api.ChatByTelegramID(ctx, chat.ID)
		if err != nil || assoc == nil {
			f.mgr.Clear(k)
			logger.LogEvent(ctx, logger.FLOW, slog.LevelInfo, "flow.abort",
				slog.String("status", "fail"),
				slog.String("cause", "chat_not_linked"),
			)
			return c.Send(msgChatNotLinked)
		}
		sess := f.mgr.Get(k)
		sess.Data.Pending.ShopID = assoc.ShopID
		sess.Data.Pending.ContractorID = assoc.ContractorID
		logger.LogEvent(ctx, logger.FLOW, slog.LevelInfo, "flow.prefill",
			slog.String("status", "ok"),
			slog.Int64("shop_id", assoc.ShopID),
			slog.Int64("contractor_id", assoc.ContractorID),
		)
		return f.enterStep(c, k, stepWorkCategory)
	}

	return f.enterStep(c, k, 0)
}

// enterStep fetches the option list for a step and renders its first page.
// An empty or failed fetch aborts the whole conversation.
func (f *Flow) enterStep(c tele.Context, k state.Key, idx int) error {
	ctx := tghelpers.BuildContext(c)
	st := steps[idx]

	opts, err := st.fetch(ctx, f.api)
	if err != nil || len(opts) == 0 {
		f.mgr.Clear(k)
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("step", st.prefix),
			slog.String("cause", "fetch"),
		}
		if err != nil {
			attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		}
		logger.LogEvent(ctx, logger.FLOW, slog.LevelWarn, "flow.abort", attrs...)
		return c.Send(msgLoadFailed)
	}

	sess := f.mgr.Get(k)
	if sess == nil {
		return nil
	}
	sess.Data.Options = opts
	sess.Data.Page = 0
	f.mgr.SetState(k, st.state)

	logger.LogEvent(ctx, logger.FLOW, slog.LevelDebug, "flow.step",
		slog.String("status", "ok"),
		slog.String("step", st.prefix),
		slog.Int("count", len(opts)),
	)

	page := BuildPage(opts, 0, st.prefix)
	return c.Send(st.prompt, page.Markup(st.prefix))
}

// CallbackHandler returns the button-press handler for one selection step.
func (f *Flow) CallbackHandler(prefix string) tele.HandlerFunc {
	idx, _ := stepIndexByPrefix(prefix)
	st := steps[idx]

	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		act, ok := ParseAction(cb.Data)
		if !ok || act.Prefix != prefix {
			return c.Respond()
		}

		ctx := tghelpers.BuildContext(c)
		k := state.KeyFrom(c)
		sess := f.mgr.Get(k)
		if sess == nil || sess.State != st.state {
			// Button from a finished or cancelled conversation.
			return c.Respond(&tele.CallbackResponse{Text: msgSessionExpired, ShowAlert: true})
		}

		switch act.Verb {
		case VerbPage:
			target, err := strconv.Atoi(act.Value)
			if err != nil {
				return c.Respond()
			}
			page := BuildPage(sess.Data.Options, target, prefix)
			sess.Data.Page = page.Index
			if err := c.Edit(st.prompt, page.Markup(prefix)); err != nil {
				return err
			}
			return c.Respond()

		case VerbSelect:
			id, err := strconv.ParseInt(act.Value, 10, 64)
			if err != nil {
				return c.Respond()
			}
			opt, found := lookupOption(sess.Data.Options, id)
			if !found {
				// Stale or tampered id: refresh the menu instead of silently ignoring.
				page := BuildPage(sess.Data.Options, 0, prefix)
				sess.Data.Page = 0
				_ = c.Edit(st.prompt, page.Markup(prefix))
				return c.Respond(&tele.CallbackResponse{Text: msgStaleSelection, ShowAlert: true})
			}

			st.assign(&sess.Data.Pending, opt)
			logger.LogEvent(ctx, logger.FLOW, slog.LevelInfo, "flow.select",
				slog.String("status", "ok"),
				slog.String("step", st.prefix),
				slog.Int64("option_id", opt.ID),
			)
			if err := c.Edit(selectedMessage(st.prompt, opt.Label)); err != nil {
				return err
			}
			if err := c.Respond(); err != nil {
				return err
			}
			return f.advance(c, k, idx)
		}
		return c.Respond()
	}
}

func lookupOption(opts []backend.Option, id int64) (backend.Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return backend.Option{}, false
}

// advance moves from a completed selection step to the next stage.
func (f *Flow) advance(c tele.Context, k state.Key, idx int) error {
	if idx+1 < len(steps) {
		return f.enterStep(c, k, idx+1)
	}
	// Urgency selected: the option cache is no longer needed.
	sess := f.mgr.Get(k)
	if sess != nil {
		sess.Data.Options = nil
		sess.Data.Page = 0
	}
	f.mgr.SetState(k, StateEnterDescription)
	return c.Send(promptDescription)
}

func (f *Flow) handleDescription(c tele.Context) error {
	k := state.KeyFrom(c)
	sess := f.mgr.Get(k)
	if sess == nil {
		return nil
	}
	sess.Data.Pending.Description = c.Text()

	if sess.Data.Pending.IsCustomUrgency {
		f.mgr.SetState(k, StateEnterCustomDays)
		return c.Send(promptCustomDays)
	}
	return f.submit(c, k)
}

func (f *Flow) handleCustomDays(c tele.Context) error {
	k := state.KeyFrom(c)
	sess := f.mgr.Get(k)
	if sess == nil {
		return nil
	}

	days, err := strconv.Atoi(strings.TrimSpace(c.Text()))
	if err != nil || days < 1 || days > 365 {
		return c.Send(msgInvalidDays)
	}
	sess.Data.Pending.CustomDays = days
	return f.submit(c, k)
}

// submit assembles the payload, creates the request and ends the
// conversation. Failures are terminal: the session is destroyed either way.
func (f *Flow) submit(c tele.Context, k state.Key) error {
	ctx := tghelpers.BuildContext(c)
	sess := f.mgr.Get(k)
	if sess == nil {
		return nil
	}
	p := sess.Data.Pending
	f.mgr.Clear(k)

	in := backend.CreateRequestInput{
		Description:          p.Description,
		ShopID:               p.ShopID,
		WorkCategoryID:       p.WorkCategoryID,
		UrgencyID:            p.UrgencyID,
		AssignedContractorID: p.ContractorID,
		CreatedByUserID:      p.CreatorID,
	}
	if p.IsCustomUrgency {
		days := p.CustomDays
		in.CustomDays = &days
	}

	resp, err := f.api.CreateRequest(ctx, in)
	if err != nil {
		logger.LogEvent(ctx, logger.FLOW, slog.LevelWarn, "flow.submit",
			slog.String("status", "fail"),
			slog.Int64("shop_id", p.ShopID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return c.Send(msgSubmitFailed)
	}

	logger.LogEvent(ctx, logger.FLOW, slog.LevelInfo, "flow.submit",
		slog.String("status", "ok"),
		slog.Int64("request_id", resp.RequestID),
		slog.Int64("shop_id", p.ShopID),
		slog.Int64("contractor_id", p.ContractorID),
		slog.Int64("work_category_id", p.WorkCategoryID),
		slog.Int64("urgency_id", p.UrgencyID),
	)
	return c.Send(successMessage(resp.RequestID))
}

// Cancel handles the /cancel command from any conversation state.
func (f *Flow) Cancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	k := state.KeyFrom(c)
	if f.mgr.Get(k) == nil {
		return c.Send(msgNothingToCancel)
	}
	f.mgr.Clear(k)
	logger.LogEvent(ctx, logger.FLOW, slog.LevelInfo, "flow.cancel",
		slog.String("status", "ok"),
		slog.Int64("user_id", k.UserID),
		slog.Int64("chat_id", k.ChatID),
	)
	return c.Send(msgCancelled)
}

// NoopHandler answers page-indicator presses without doing anything.
func (f *Flow) NoopHandler(c tele.Context) error {
	return c.Respond()
}

// HealthHandler handles the /health command and reports backend
// reachability with per-status-code detail.
func (f *Flow) HealthHandler(c tele.Context) error {
	_ = c.Send(msgHealthChecking)

	ctx := tghelpers.BuildContext(c)
	res := f.api.Health(ctx)

	var msg string
	switch res.Status {
	case backend.HealthOK:
		msg = healthOKMessage(res.Body)
	case backend.HealthUnauthorized:
		msg = msgHealthUnauthorized
	case backend.HealthForbidden:
		msg = msgHealthForbidden
	case backend.HealthStatusError:
		msg = healthStatusMessage(res.Code, res.Body)
	default:
		errText := ""
		if res.Err != nil {
			errText = logger.SanitizeLimit(res.Err.Error(), 256)
		}
		msg = healthUnreachableMessage(errText)
	}
	return c.Send(msg, tele.ModeMarkdown)
}
