package admin

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/bancharampur/infogate/internal/llm"
)

// ErrUnparseable is returned when an instruction cannot be mapped onto the
// command grammar. It is not a fault; callers answer with guidance text.
var ErrUnparseable = errors.New("admin: command not understood")

// targetAliases folds plural nouns the model sometimes emits.
var targetAliases = map[string]Target{
	"posts":   TargetPost,
	"shops":   TargetShop,
	"users":   TargetUser,
	"reports": TargetReport,
}

// rawCommand mirrors the model's reply. Scalar fields are kept raw because
// models alternate between "123" and 123.
type rawCommand struct {
	Action   *string         `json:"action"`
	Target   *string         `json:"target"`
	ID       json.RawMessage `json:"id"`
	Email    json.RawMessage `json:"email"`
	Location json.RawMessage `json:"location"`
	Count    json.RawMessage `json:"count"`
}

// Parser translates free text into a Command using a language model.
type Parser struct {
	completer llm.Completer
	validate  *validator.Validate
}

// NewParser constructs a Parser.
func NewParser(completer llm.Completer) *Parser {
	return &Parser{
		completer: completer,
		validate:  validator.New(),
	}
}

// Parse returns the command expressed by message, ErrUnparseable when the
// model's answer does not fit the grammar, or a transport error from the
// model. It never touches the store.
func (p *Parser) Parse(ctx context.Context, message string) (Command, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Command{}, ErrUnparseable
	}
	reply, err := p.completer.Complete(ctx, systemPrompt, message)
	if err != nil {
		return Command{}, err
	}
	return p.decode(reply)
}

func (p *Parser) decode(reply string) (Command, error) {
	body, ok := extractObject(reply)
	if !ok {
		return Command{}, ErrUnparseable
	}
	var raw rawCommand
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Command{}, ErrUnparseable
	}
	if raw.Action == nil || raw.Target == nil {
		return Command{}, ErrUnparseable
	}

	cmd := Command{
		Action: Action(p.token(*raw.Action)),
		Target: p.target(*raw.Target),
	}
	if err := p.validate.Struct(cmd); err != nil {
		return Command{}, ErrUnparseable
	}

	// Optional fields that fail validation are dropped, never repaired.
	cmd.ID = scalar(raw.ID)
	if email := scalar(raw.Email); email != "" && p.validate.Var(email, "email") == nil {
		cmd.Email = email
	}
	cmd.Location = scalar(raw.Location)
	if n, ok := positiveInt(scalar(raw.Count)); ok {
		cmd.Count = n
	}
	return cmd, nil
}

// token case-folds s. Casers carry state, so one is built per call.
func (p *Parser) token(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (p *Parser) target(s string) Target {
	t := p.token(s)
	if alias, ok := targetAliases[t]; ok {
		return alias
	}
	return Target(t)
}

// extractObject returns the outermost {...} span of s, tolerating prose or
// code fences around it.
func extractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// scalar renders a JSON string or number as trimmed text. Anything else,
// including null, yields "".
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func positiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
