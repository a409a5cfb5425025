package flow

import (
	"fmt"
	"strings"
)

// Action verbs carried by inline buttons. The wire format is a flat
// "{prefix}_{verb}_{value}" string, plus the literal "noop" sentinel
// used by the page indicator.
const (
	VerbSelect = "select"
	VerbPage   = "page"
	Noop       = "noop"
)

// Action is a decoded button press.
type Action struct {
	Prefix string
	Verb   string
	Value  string
}

// ParseAction decodes flat callback data. The value part may itself
// contain underscores; only the first two separators are structural.
func ParseAction(data string) (Action, bool) {
	data = strings.TrimSpace(data)
	if data == "" || data == Noop {
		return Action{}, false
	}
	parts := strings.SplitN(data, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return Action{}, false
	}
	if parts[1] != VerbSelect && parts[1] != VerbPage {
		return Action{}, false
	}
	return Action{Prefix: parts[0], Verb: parts[1], Value: parts[2]}, true
}

// SelectData encodes a selection action for an item id.
func SelectData(prefix string, id int64) string {
	return fmt.Sprintf("%s_%s_%d", prefix, VerbSelect, id)
}

// PageData encodes a navigation action to a page index.
func PageData(prefix string, page int) string {
	return fmt.Sprintf("%s_%s_%d", prefix, VerbPage, page)
}
