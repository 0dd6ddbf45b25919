package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bancharampur/infogate/internal/llm"
)

type interpreterFixture struct {
	completer *stubCompleter
	store     *memoryStore
	keys      *memoryIdempotency
	recorder  *outcomeRecorder
	audit     *auditQueue
	svc       *Interpreter
}

func newInterpreterFixture(reply string) interpreterFixture {
	completer := &stubCompleter{reply: reply}
	store := newMemoryStore()
	keys := newMemoryIdempotency()
	recorder := &outcomeRecorder{}
	audit := &auditQueue{}
	exec := NewExecutor(newGate(), store, newMemoryAccounts("john@example.com"), nil, nil)
	svc := NewInterpreter(NewParser(completer), exec, nil,
		WithIdempotency(keys),
		WithRecorder(recorder),
		WithAuditSink(audit),
	)
	return interpreterFixture{completer: completer, store: store, keys: keys, recorder: recorder, audit: audit, svc: svc}
}

func TestInterpretAppliesCommand(t *testing.T) {
	f := newInterpreterFixture(`{"action":"delete","target":"post","id":"123"}`)
	f.store.posts["123"] = true

	reply, err := f.svc.Interpret(context.Background(), Request{PrincipalID: "admin-1", Message: "Post ID 123 মুছে দাও"})

	require.NoError(t, err)
	assert.Equal(t, "Post 123 deleted successfully", reply)
	assert.Equal(t, []string{"delete/post/applied"}, f.recorder.seen)
	require.Len(t, f.audit.payloads, 1)
	payload := f.audit.payloads[0]
	assert.NotEmpty(t, payload.CommandID)
	assert.Equal(t, "admin-1", payload.ActorID)
	assert.Equal(t, "admin", payload.ActorRole)
	assert.Equal(t, "123", payload.EntityID)
	assert.Equal(t, "Post ID 123 মুছে দাও", payload.Message)
}

func TestInterpretUnparseableIsAReply(t *testing.T) {
	f := newInterpreterFixture(`{"action":null,"target":null}`)

	reply, err := f.svc.Interpret(context.Background(), Request{PrincipalID: "admin-1", Message: "what's the weather"})

	require.NoError(t, err)
	assert.Equal(t, MsgUnparseable, reply)
	assert.Equal(t, []string{"//unparseable"}, f.recorder.seen)
	assert.Empty(t, f.audit.payloads)
}

func TestInterpretDeniedIsAReply(t *testing.T) {
	f := newInterpreterFixture(`{"action":"delete","target":"post","id":"123"}`)
	f.store.posts["123"] = true

	reply, err := f.svc.Interpret(context.Background(), Request{PrincipalID: "user-1", Message: "Delete post ID 123"})

	require.NoError(t, err)
	assert.Equal(t, MsgAccessDenied, reply)
	assert.Contains(t, f.store.posts, "123")
	assert.Empty(t, f.audit.payloads)
}

func TestInterpretProviderFaultIsAnError(t *testing.T) {
	f := newInterpreterFixture("")
	f.completer.err = llm.ErrNotConfigured

	_, err := f.svc.Interpret(context.Background(), Request{PrincipalID: "admin-1", Message: "Delete post ID 123"})

	require.Error(t, err)
	assert.Equal(t, "LLM API key is not configured", err.Error())
	assert.Empty(t, f.recorder.seen)
}

func TestInterpretSuppressesDuplicates(t *testing.T) {
	f := newInterpreterFixture(`{"action":"delete","target":"post","id":"123"}`)
	f.store.posts["123"] = true
	req := Request{PrincipalID: "admin-1", Message: "Delete post ID 123", IdempotencyKey: "k-1"}

	first, err := f.svc.Interpret(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Post 123 deleted successfully", first)

	second, err := f.svc.Interpret(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, MsgDuplicate, second)
	assert.Len(t, f.audit.payloads, 1)
}

func TestInterpretReleasesKeyWhenNothingChanged(t *testing.T) {
	f := newInterpreterFixture(`{"action":"delete","target":"post"}`)
	req := Request{PrincipalID: "admin-1", Message: "delete the post", IdempotencyKey: "k-2"}

	reply, err := f.svc.Interpret(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, MsgPostIDRequired, reply)
	assert.Equal(t, []string{"admin-1:k-2"}, f.keys.deleted)

	reply, err = f.svc.Interpret(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, MsgPostIDRequired, reply)
}

func TestInterpretAuditFailureDoesNotFailCommand(t *testing.T) {
	f := newInterpreterFixture(`{"action":"block","target":"user","email":"john@example.com"}`)
	f.audit.err = errors.New("redis down")

	reply, err := f.svc.Interpret(context.Background(), Request{PrincipalID: "admin-1", Message: "block john@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "User john@example.com has been blocked", reply)
}

func TestInterpretDeniesBeforeIdempotencyLookup(t *testing.T) {
	f := newInterpreterFixture(`{"action":"delete","target":"post","id":"123"}`)
	f.store.posts["123"] = true
	ctx := context.Background()

	reply, err := f.svc.Interpret(ctx, Request{PrincipalID: "admin-1", Message: "Delete post ID 123", IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, "Post 123 deleted successfully", reply)

	reply, err = f.svc.Interpret(ctx, Request{PrincipalID: "user-1", Message: "Delete post ID 123", IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, MsgAccessDenied, reply)
	assert.Equal(t, map[string]bool{"admin-1:k1": true}, f.keys.keys)
	assert.Equal(t, []string{"delete/post/applied", "delete/post/denied"}, f.recorder.seen)
}

func TestInterpretScopesKeysPerPrincipal(t *testing.T) {
	f := newInterpreterFixture(`{"action":"delete","target":"post","id":"123"}`)
	f.store.posts["123"] = true
	ctx := context.Background()

	reply, err := f.svc.Interpret(ctx, Request{PrincipalID: "admin-1", Message: "Delete post ID 123", IdempotencyKey: "shared"})
	require.NoError(t, err)
	assert.Equal(t, "Post 123 deleted successfully", reply)

	f.store.posts["123"] = true
	reply, err = f.svc.Interpret(ctx, Request{PrincipalID: "local-1", Message: "Delete post ID 123", IdempotencyKey: "shared"})
	require.NoError(t, err)
	assert.Equal(t, "Post 123 deleted successfully", reply)
	assert.Len(t, f.audit.payloads, 2)
}
