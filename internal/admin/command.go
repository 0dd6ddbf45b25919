// Package admin implements the natural-language command console used by
// portal administrators: free text is translated into a Command by a language
// model, authorized, and applied as exactly one privileged mutation.
package admin

// Action is the verb of an admin command.
type Action string

const (
	ActionDelete    Action = "delete"
	ActionBlock     Action = "block"
	ActionUnblock   Action = "unblock"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionHighlight Action = "highlight"
	ActionResolve   Action = "resolve"
)

// Target is the noun an admin command applies to.
type Target string

const (
	TargetPost   Target = "post"
	TargetShop   Target = "shop"
	TargetUser   Target = "user"
	TargetReport Target = "report"
)

// DefaultHighlightCount is used when a highlight command names no count.
const DefaultHighlightCount = 3

// Command is the structured form of one admin instruction. It lives for a
// single request and is never stored.
type Command struct {
	Action   Action `json:"action" validate:"required,oneof=delete block unblock approve reject highlight resolve"`
	Target   Target `json:"target" validate:"required,oneof=post shop user report"`
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Location string `json:"location,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// Key returns the dispatch key, e.g. "delete_post".
func (c Command) Key() string {
	return commandKey(c.Action, c.Target)
}

func commandKey(action Action, target Target) string {
	return string(action) + "_" + string(target)
}
