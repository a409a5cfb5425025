package flow

import (
	"context"

	"github.com/Growstale/RequestHandlerWebServer/core/telegram/state"
	"github.com/Growstale/RequestHandlerWebServer/internal/backend"
)

// Conversation states. Each selection step owns one state; the two
// free-text steps are routed through the session manager.
const (
	StateSelectShop         state.State = "select_shop"
	StateSelectContractor   state.State = "select_contractor"
	StateSelectWorkCategory state.State = "select_work_category"
	StateSelectUrgency      state.State = "select_urgency"
	StateEnterDescription   state.State = "enter_description"
	StateEnterCustomDays    state.State = "enter_custom_days"
)

// Action prefixes, one per selection step.
const (
	PrefixShop         = "shop"
	PrefixContractor   = "contractor"
	PrefixWorkCategory = "work"
	PrefixUrgency      = "urgency"
)

// customizableLabel is the urgency label that requires an explicit
// deadline. The backend exposes no stable flag for it, so the match is
// on the display label and kept isolated here.
const customizableLabel = "Customizable"

func isCustomizableUrgency(label string) bool {
	return label == customizableLabel
}

// stepDef parameterizes one selection step of the conversation.
type stepDef struct {
	prefix string
	state  state.State
	prompt string
	fetch  func(ctx context.Context, api *backend.Client) ([]backend.Option, error)
	assign func(p *PendingRequest, opt backend.Option)
}

var steps = []stepDef{
	{
		prefix: PrefixShop,
		state:  StateSelectShop,
		prompt: promptShop,
		fetch: func(ctx context.Context, api *backend.Client) ([]backend.Option, error) {
			return api.Shops(ctx)
		},
		assign: func(p *PendingRequest, opt backend.Option) { p.ShopID = opt.ID },
	},
	{
		prefix: PrefixContractor,
		state:  StateSelectContractor,
		prompt: promptContractor,
		fetch: func(ctx context.Context, api *backend.Client) ([]backend.Option, error) {
			return api.Contractors(ctx)
		},
		assign: func(p *PendingRequest, opt backend.Option) { p.ContractorID = opt.ID },
	},
	{
		prefix: PrefixWorkCategory,
		state:  StateSelectWorkCategory,
		prompt: promptWorkCategory,
		fetch: func(ctx context.Context, api *backend.Client) ([]backend.Option, error) {
			return api.WorkCategories(ctx)
		},
		assign: func(p *PendingRequest, opt backend.Option) { p.WorkCategoryID = opt.ID },
	},
	{
		prefix: PrefixUrgency,
		state:  StateSelectUrgency,
		prompt: promptUrgency,
		fetch: func(ctx context.Context, api *backend.Client) ([]backend.Option, error) {
			return api.UrgencyCategories(ctx)
		},
		assign: func(p *PendingRequest, opt backend.Option) {
			p.UrgencyID = opt.ID
			p.IsCustomUrgency = isCustomizableUrgency(opt.Label)
		},
	},
}

// stepWorkCategory is where group-chat conversations enter after the
// shop and contractor are pre-filled from the chat association.
const stepWorkCategory = 2

func stepIndexByPrefix(prefix string) (int, bool) {
	for i, st := range steps {
		if st.prefix == prefix {
			return i, true
		}
	}
	return 0, false
}
