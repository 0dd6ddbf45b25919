package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bancharampur/infogate/internal/moderation"
	"github.com/bancharampur/infogate/internal/rbac"
	"github.com/bancharampur/infogate/internal/shared"
	"github.com/bancharampur/infogate/internal/users"
)

// ModerationStore applies mutations to posts, shops and reports.
type ModerationStore interface {
	DeletePost(ctx context.Context, id string) error
	DeleteShop(ctx context.Context, id string) error
	SetShopStatus(ctx context.Context, id string, status moderation.ShopStatus) error
	ApprovePendingShops(ctx context.Context) (int64, error)
	HighlightShops(ctx context.Context, location string, limit int) ([]moderation.Shop, error)
	ResolveReport(ctx context.Context, id, actorID string) error
}

// UserStore changes account status.
type UserStore interface {
	Block(ctx context.Context, email string) error
	Unblock(ctx context.Context, email string) error
}

// Authorizer decides whether a principal may run admin commands.
type Authorizer interface {
	Authorize(ctx context.Context, principalID string) (rbac.Principal, error)
}

// Locker serializes operations across service replicas.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

// Outcome classifies how a command ended.
type Outcome string

const (
	OutcomeApplied      Outcome = "applied"
	OutcomeDenied       Outcome = "denied"
	OutcomeMissingField Outcome = "missing_field"
	OutcomeUnrecognized Outcome = "unrecognized"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeFailed       Outcome = "failed"
	OutcomeUnparseable  Outcome = "unparseable"
	OutcomeDuplicate    Outcome = "duplicate"
)

// Result is the admin-facing outcome of one command.
type Result struct {
	Message  string
	Outcome  Outcome
	Actor    rbac.Principal
	EntityID string
	Mutated  bool // store was changed
}

type commandFunc func(ctx context.Context, actor rbac.Principal, cmd Command) (Result, error)

// Executor maps authorized commands onto exactly one store mutation.
type Executor struct {
	gate     Authorizer
	content  ModerationStore
	accounts UserStore
	locker   Locker
	logger   *slog.Logger
	commands map[string]commandFunc
}

// NewExecutor builds an Executor. locker may be nil, in which case highlight
// commands rely on the store's own serialization.
func NewExecutor(gate Authorizer, content ModerationStore, accounts UserStore, locker Locker, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		gate:     gate,
		content:  content,
		accounts: accounts,
		locker:   locker,
		logger:   logger,
	}
	e.commands = map[string]commandFunc{
		commandKey(ActionDelete, TargetPost):    e.deletePost,
		commandKey(ActionDelete, TargetShop):    e.deleteShop,
		commandKey(ActionBlock, TargetUser):     e.blockUser,
		commandKey(ActionUnblock, TargetUser):   e.unblockUser,
		commandKey(ActionApprove, TargetShop):   e.approveShop,
		commandKey(ActionReject, TargetShop):    e.rejectShop,
		commandKey(ActionHighlight, TargetShop): e.highlightShop,
		commandKey(ActionResolve, TargetReport): e.resolveReport,
	}
	return e
}

// Execute authorizes principalID and applies cmd. Every failure is folded
// into the returned Result; nothing is written unless authorization passes
// and the pair is in the dispatch table.
func (e *Executor) Execute(ctx context.Context, principalID string, cmd Command) Result {
	actor, denied, ok := e.Authorize(ctx, principalID, cmd)
	if !ok {
		return denied
	}
	return e.Apply(ctx, actor, cmd)
}

// Authorize resolves principalID through the gate. When the principal may not
// run admin commands ok is false and res carries the reply.
func (e *Executor) Authorize(ctx context.Context, principalID string, cmd Command) (actor rbac.Principal, res Result, ok bool) {
	actor, err := e.gate.Authorize(ctx, principalID)
	if err == nil {
		return actor, Result{}, true
	}
	if errors.Is(err, rbac.ErrAccessDenied) {
		e.logger.Warn("admin command denied",
			slog.String("principal", principalID),
			slog.String("role", string(actor.Role)),
			slog.String("command", cmd.Key()))
		return actor, Result{Message: MsgAccessDenied, Outcome: OutcomeDenied, Actor: actor}, false
	}
	return actor, e.failed(principalID, cmd, err), false
}

// Apply runs cmd for an already authorized actor.
func (e *Executor) Apply(ctx context.Context, actor rbac.Principal, cmd Command) Result {
	run, ok := e.commands[cmd.Key()]
	if !ok {
		return Result{Message: MsgUnrecognized, Outcome: OutcomeUnrecognized, Actor: actor}
	}

	res, err := run(ctx, actor, cmd)
	if err != nil {
		res = e.failed(actor.ID, cmd, err)
		res.Actor = actor
		return res
	}
	res.Actor = actor
	if res.Mutated {
		e.logger.Info("admin command applied",
			slog.String("principal", actor.ID),
			slog.String("command", cmd.Key()),
			slog.String("entity", res.EntityID))
	}
	return res
}

func (e *Executor) failed(principalID string, cmd Command, err error) Result {
	e.logger.Error("admin command failed",
		slog.String("principal", principalID),
		slog.String("command", cmd.Key()),
		slog.String("id", cmd.ID),
		slog.String("email", cmd.Email),
		slog.String("location", cmd.Location),
		slog.Int("count", cmd.Count),
		slog.Any("error", err))
	return Result{Message: errorPrefix + err.Error(), Outcome: OutcomeFailed}
}

func (e *Executor) deletePost(ctx context.Context, _ rbac.Principal, cmd Command) (Result, error) {
	if cmd.ID == "" {
		return missing(MsgPostIDRequired), nil
	}
	if err := e.content.DeletePost(ctx, cmd.ID); err != nil {
		return notFoundOr(err, cmd.ID, "Post %s not found")
	}
	return applied(cmd.ID, "Post %s deleted successfully", cmd.ID), nil
}

func (e *Executor) deleteShop(ctx context.Context, _ rbac.Principal, cmd Command) (Result, error) {
	if cmd.ID == "" {
		return missing(MsgShopIDRequired), nil
	}
	if err := e.content.DeleteShop(ctx, cmd.ID); err != nil {
		return notFoundOr(err, cmd.ID, "Shop %s not found")
	}
	return applied(cmd.ID, "Shop %s deleted successfully", cmd.ID), nil
}

func (e *Executor) blockUser(ctx context.Context, _ rbac.Principal, cmd Command) (Result, error) {
	if cmd.Email == "" {
		return missing(MsgUserEmailRequired), nil
	}
	if err := e.accounts.Block(ctx, cmd.Email); err != nil {
		return notFoundOr(err, cmd.Email, "User %s not found")
	}
	return applied(cmd.Email, "User %s has been blocked", cmd.Email), nil
}

func (e *Executor) unblockUser(ctx context.Context, _ rbac.Principal, cmd Command) (Result, error) {
	if cmd.Email == "" {
		return missing(MsgUserEmailRequired), nil
	}
	if err := e.accounts.Unblock(ctx, cmd.Email); err != nil {
		return notFoundOr(err, cmd.Email, "User %s not found")
	}
	return applied(cmd.Email, "User %s has been unblocked", cmd.Email), nil
}

func (e *Executor) approveShop(ctx context.Context, _ rbac.Principal, cmd Command) (Result, error) {
	if cmd.ID != "" {
		if err := e.content.SetShopStatus(ctx, cmd.ID, moderation.ShopApproved); err != nil {
			return notFoundOr(err, cmd.ID, "Shop %s not found")
		}
		return applied(cmd.ID, "Shop %s approved", cmd.ID), nil
	}
	n, err := e.content.ApprovePendingShops(ctx)
	if err != nil {
		return Result{}, err
	}
	if n == 0 {
		return Result{Message: "No pending shops to approve", Outcome: OutcomeApplied}, nil
	}
	return applied("", "Approved %d pending shops", n), nil
}

func (e *Executor) rejectShop(ctx context.Context, _ rbac.Principal, cmd Command) (Result, error) {
	if cmd.ID == "" {
		return missing(MsgShopIDRequired), nil
	}
	if err := e.content.SetShopStatus(ctx, cmd.ID, moderation.ShopRejected); err != nil {
		return notFoundOr(err, cmd.ID, "Shop %s not found")
	}
	return applied(cmd.ID, "Shop %s rejected", cmd.ID), nil
}

// highlightShop replaces the spotlight. The clear is global even when a
// location is given: a highlight for one place un-highlights every other
// place. This mirrors the portal's existing single-spotlight behaviour and
// is kept until product decides whether spotlights are per location.
func (e *Executor) highlightShop(ctx context.Context, _ rbac.Principal, cmd Command) (Result, error) {
	count := cmd.Count
	if count <= 0 {
		count = DefaultHighlightCount
	}
	if e.locker != nil {
		release, err := e.locker.Acquire(ctx, shared.HighlightLockKey)
		switch {
		case err != nil && (errors.Is(err, shared.ErrLockHeld) || ctx.Err() != nil):
			return Result{}, fmt.Errorf("acquire highlight lock: %w", err)
		case err != nil:
			// Locker unreachable: the store still serializes highlights itself.
			e.logger.Warn("highlight lock unavailable", slog.Any("error", err))
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					e.logger.Warn("release highlight lock", slog.Any("error", err))
				}
			}()
		}
	}

	shops, err := e.content.HighlightShops(ctx, cmd.Location, count)
	if err != nil {
		return Result{}, err
	}
	if len(shops) == 0 {
		msg := "No approved shops found to highlight"
		if cmd.Location != "" {
			msg = fmt.Sprintf("No shops found to highlight in %s", cmd.Location)
		}
		return Result{Message: msg, Outcome: OutcomeApplied, Mutated: true}, nil
	}
	if cmd.Location == "" {
		return applied("", "Highlighted top %d shops", len(shops)), nil
	}
	return applied("", "Highlighted top %d shops in %s", len(shops), cmd.Location), nil
}

func (e *Executor) resolveReport(ctx context.Context, actor rbac.Principal, cmd Command) (Result, error) {
	if cmd.ID == "" {
		return missing(MsgReportIDRequired), nil
	}
	if err := e.content.ResolveReport(ctx, cmd.ID, actor.ID); err != nil {
		return notFoundOr(err, cmd.ID, "Report %s not found")
	}
	return applied(cmd.ID, "Report %s marked as resolved", cmd.ID), nil
}

func applied(entityID, format string, args ...any) Result {
	return Result{
		Message:  fmt.Sprintf(format, args...),
		Outcome:  OutcomeApplied,
		EntityID: entityID,
		Mutated:  true,
	}
}

func missing(msg string) Result {
	return Result{Message: msg, Outcome: OutcomeMissingField}
}

func notFoundOr(err error, ref, format string) (Result, error) {
	if errors.Is(err, moderation.ErrNotFound) || errors.Is(err, users.ErrNotFound) {
		return Result{Message: fmt.Sprintf(format, ref), Outcome: OutcomeNotFound, EntityID: ref}, nil
	}
	return Result{}, err
}
