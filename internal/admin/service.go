package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/bancharampur/infogate/internal/rbac"
	"github.com/bancharampur/infogate/internal/shared"
	"github.com/bancharampur/infogate/jobs"
)

const idempotencyModule = "admin_command"

// CommandParser turns free text into a Command.
type CommandParser interface {
	Parse(ctx context.Context, message string) (Command, error)
}

// CommandExecutor authorizes and applies a Command.
type CommandExecutor interface {
	Authorize(ctx context.Context, principalID string, cmd Command) (rbac.Principal, Result, bool)
	Apply(ctx context.Context, actor rbac.Principal, cmd Command) Result
}

// IdempotencyStore remembers processed request keys.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Recorder counts command outcomes.
type Recorder interface {
	RecordCommand(action, target, outcome string)
}

// AuditSink receives applied commands for the audit trail.
type AuditSink interface {
	EnqueueCommandAudit(ctx context.Context, payload jobs.CommandAuditPayload) error
}

// Request is one admin chat message.
type Request struct {
	PrincipalID    string
	Message        string
	IdempotencyKey string
}

// Interpreter runs the parse, authorize, execute pipeline for a chat message.
type Interpreter struct {
	parser      CommandParser
	executor    CommandExecutor
	idempotency IdempotencyStore
	metrics     Recorder
	audit       AuditSink
	logger      *slog.Logger
	now         func() time.Time
}

// InterpreterOption customises an Interpreter.
type InterpreterOption func(*Interpreter)

// WithIdempotency enables duplicate suppression for requests carrying a key.
func WithIdempotency(store IdempotencyStore) InterpreterOption {
	return func(i *Interpreter) { i.idempotency = store }
}

// WithRecorder reports command outcomes to r.
func WithRecorder(r Recorder) InterpreterOption {
	return func(i *Interpreter) { i.metrics = r }
}

// WithAuditSink forwards applied commands to sink.
func WithAuditSink(sink AuditSink) InterpreterOption {
	return func(i *Interpreter) { i.audit = sink }
}

// NewInterpreter wires an Interpreter.
func NewInterpreter(parser CommandParser, executor CommandExecutor, logger *slog.Logger, opts ...InterpreterOption) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Interpreter{
		parser:   parser,
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret returns the admin-facing reply for req. An error is returned only
// for faults outside the admin's control, such as an unreachable model.
func (i *Interpreter) Interpret(ctx context.Context, req Request) (reply string, err error) {
	commandID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "admin.interpret",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrPrincipal.String(req.PrincipalID), attrCommandID.String(commandID)),
	)
	defer func() { endSpan(span, err) }()

	cmd, err := i.parse(ctx, req.Message)
	if err != nil {
		if errors.Is(err, ErrUnparseable) {
			i.record(Command{}, OutcomeUnparseable)
			span.SetAttributes(attrOutcome.String(string(OutcomeUnparseable)))
			return MsgUnparseable, nil
		}
		i.logger.Error("parse admin command", slog.String("principal", req.PrincipalID), slog.Any("error", err))
		return "", err
	}
	span.SetAttributes(commandAttributes(cmd)...)

	actor, denied, ok := i.executor.Authorize(ctx, req.PrincipalID, cmd)
	if !ok {
		span.SetAttributes(attrOutcome.String(string(denied.Outcome)))
		i.record(cmd, denied.Outcome)
		return denied.Message, nil
	}

	key := idempotencyKey(actor.ID, req.IdempotencyKey)
	if key != "" && i.idempotency != nil {
		if err := i.idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				i.record(cmd, OutcomeDuplicate)
				span.SetAttributes(attrOutcome.String(string(OutcomeDuplicate)))
				return MsgDuplicate, nil
			}
			return "", err
		}
	}

	res := i.apply(ctx, actor, cmd)
	span.SetAttributes(attrOutcome.String(string(res.Outcome)))
	i.record(cmd, res.Outcome)

	if key != "" && i.idempotency != nil && !res.Mutated {
		// Nothing changed, so the same key may be retried.
		if err := i.idempotency.Delete(context.WithoutCancel(ctx), key); err != nil {
			i.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", err))
		}
	}
	if res.Mutated {
		i.enqueueAudit(ctx, commandID, req, cmd, res)
	}
	return res.Message, nil
}

func (i *Interpreter) parse(ctx context.Context, message string) (cmd Command, err error) {
	ctx, span := tracer.Start(ctx, "admin.parse")
	defer func() {
		if errors.Is(err, ErrUnparseable) {
			endSpan(span, nil)
			return
		}
		endSpan(span, err)
	}()
	return i.parser.Parse(ctx, message)
}

func (i *Interpreter) apply(ctx context.Context, actor rbac.Principal, cmd Command) Result {
	ctx, span := tracer.Start(ctx, "admin.execute", trace.WithAttributes(commandAttributes(cmd)...))
	res := i.executor.Apply(ctx, actor, cmd)
	var err error
	if res.Outcome == OutcomeFailed {
		err = errors.New(res.Message)
	}
	endSpan(span, err)
	return res
}

// idempotencyKey scopes a client key to the principal that sent it.
func idempotencyKey(principalID, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return principalID + ":" + key
}

func (i *Interpreter) record(cmd Command, outcome Outcome) {
	if i.metrics == nil {
		return
	}
	i.metrics.RecordCommand(string(cmd.Action), string(cmd.Target), string(outcome))
}

func (i *Interpreter) enqueueAudit(ctx context.Context, commandID string, req Request, cmd Command, res Result) {
	if i.audit == nil {
		return
	}
	payload := jobs.CommandAuditPayload{
		CommandID: commandID,
		ActorID:   req.PrincipalID,
		ActorRole: string(res.Actor.Role),
		Action:    string(cmd.Action),
		Target:    string(cmd.Target),
		EntityID:  res.EntityID,
		Location:  cmd.Location,
		Count:     cmd.Count,
		Message:   req.Message,
		Result:    res.Message,
		At:        i.now().UTC(),
	}
	if err := i.audit.EnqueueCommandAudit(context.WithoutCancel(ctx), payload); err != nil {
		i.logger.Warn("enqueue command audit",
			slog.String("command_id", commandID),
			slog.String("command", cmd.Key()),
			slog.Any("error", err))
	}
}
