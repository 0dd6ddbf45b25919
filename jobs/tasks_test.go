package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/bancharampur/infogate/internal/jobs"
	"github.com/bancharampur/infogate/internal/shared"
)

type recordedAudit struct {
	logs []shared.AuditLog
	err  error
}

func (r *recordedAudit) Record(_ context.Context, log shared.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	return nil
}

func samplePayload() CommandAuditPayload {
	return CommandAuditPayload{
		CommandID: "cmd-1",
		ActorID:   "admin-1",
		ActorRole: "admin",
		Action:    "delete",
		Target:    "post",
		EntityID:  "123",
		Message:   "Delete post ID 123",
		Result:    "Post 123 deleted successfully",
		At:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewCommandAuditTask(t *testing.T) {
	task, err := NewCommandAuditTask(samplePayload())
	require.NoError(t, err)
	assert.Equal(t, TaskCommandAudit, task.Type())

	var decoded CommandAuditPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "cmd-1", decoded.CommandID)

	_, err = NewCommandAuditTask(CommandAuditPayload{})
	assert.Error(t, err)
}

func TestCommandAuditJobRecords(t *testing.T) {
	audit := &recordedAudit{}
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	job := NewCommandAuditJob(audit, nil, metrics)

	task, err := NewCommandAuditTask(samplePayload())
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	assert.Equal(t, "admin-1", log.ActorID)
	assert.Equal(t, "delete", log.Action)
	assert.Equal(t, "post", log.Entity)
	assert.Equal(t, "123", log.EntityID)
	assert.Equal(t, "cmd-1", log.Meta["command_id"])
}

func TestCommandAuditJobBulkEntity(t *testing.T) {
	audit := &recordedAudit{}
	job := NewCommandAuditJob(audit, nil, nil)
	payload := samplePayload()
	payload.Action, payload.Target, payload.EntityID = "approve", "shop", ""

	task, err := NewCommandAuditTask(payload)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, "*", audit.logs[0].EntityID)
}

func TestCommandAuditJobSkipsBadPayload(t *testing.T) {
	job := NewCommandAuditJob(&recordedAudit{}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskCommandAudit, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCommandAuditJobPropagatesStoreError(t *testing.T) {
	job := NewCommandAuditJob(&recordedAudit{err: errors.New("db down")}, nil, nil)
	task, err := NewCommandAuditTask(samplePayload())
	require.NoError(t, err)

	assert.EqualError(t, job.Handle(context.Background(), task), "db down")
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "x"}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

func TestClientEnqueueCommandAudit(t *testing.T) {
	enq := &stubEnqueuer{}
	client := NewClientWith(enq)

	require.NoError(t, client.EnqueueCommandAudit(context.Background(), samplePayload()))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskCommandAudit, enq.tasks[0].Type())

	enq.err = asynq.ErrTaskIDConflict
	assert.NoError(t, client.EnqueueCommandAudit(context.Background(), samplePayload()))

	enq.err = errors.New("redis unavailable")
	assert.Error(t, client.EnqueueCommandAudit(context.Background(), samplePayload()))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHandlerHealth(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4}}, nil).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":4}`, rr.Body.String())
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}
