package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bancharampur/infogate/internal/jobs"
	"github.com/bancharampur/infogate/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCommandAudit persists the audit trail of an applied admin command.
	TaskCommandAudit = "admin:command.audit"
)

// CommandAuditPayload describes one applied admin command.
type CommandAuditPayload struct {
	CommandID string    `json:"command_id"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	EntityID  string    `json:"entity_id,omitempty"`
	Location  string    `json:"location,omitempty"`
	Count     int       `json:"count,omitempty"`
	Message   string    `json:"message"`
	Result    string    `json:"result"`
	At        time.Time `json:"at"`
}

// NewCommandAuditTask constructs an Asynq task. The command id doubles as the
// task id so a retried enqueue never records the same command twice.
func NewCommandAuditTask(payload CommandAuditPayload) (*asynq.Task, error) {
	if payload.CommandID == "" {
		return nil, errors.New("command audit: command id required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommandAudit, data,
		asynq.Queue(QueueDefault),
		asynq.TaskID(payload.CommandID),
		asynq.MaxRetry(5),
	), nil
}

// AuditRecorder persists audit rows.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CommandAuditJob writes command audit tasks into audit_logs.
type CommandAuditJob struct {
	Audit   AuditRecorder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCommandAuditJob constructs the job handler.
func NewCommandAuditJob(audit AuditRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *CommandAuditJob {
	return &CommandAuditJob{Audit: audit, Logger: logger, Metrics: metrics}
}

// Handle processes TaskCommandAudit tasks.
func (j *CommandAuditJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Audit == nil {
		return errors.New("command audit: dependencies not configured")
	}
	var payload CommandAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("command audit: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskCommandAudit)
	defer func() {
		err = tracker.End(err)
	}()

	entityID := payload.EntityID
	if entityID == "" {
		entityID = "*"
	}
	err = j.Audit.Record(ctx, shared.AuditLog{
		ActorID:  payload.ActorID,
		Action:   payload.Action,
		Entity:   payload.Target,
		EntityID: entityID,
		Meta: map[string]any{
			"command_id": payload.CommandID,
			"role":       payload.ActorRole,
			"message":    payload.Message,
			"result":     payload.Result,
			"location":   payload.Location,
			"count":      payload.Count,
		},
		At: payload.At,
	})
	if err != nil {
		j.log().Error("record command audit", slog.String("command_id", payload.CommandID), slog.Any("error", err))
		return err
	}
	return nil
}

func (j *CommandAuditJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
