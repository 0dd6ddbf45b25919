package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bancharampur/infogate/internal/platform/httpx"
	"github.com/bancharampur/infogate/internal/shared"
)

const maxBodyBytes = 64 << 10

// IdempotencyHeader carries an optional client-chosen request key.
const IdempotencyHeader = "Idempotency-Key"

var errNoPrincipal = errors.New("missing authenticated principal")

type chatRequest struct {
	Message string `json:"message"`
}

// Handler serves the admin chat endpoint.
type Handler struct {
	interpreter *Interpreter
	logger      *slog.Logger
}

// NewHandler constructs the handler.
func NewHandler(interpreter *Interpreter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{interpreter: interpreter, logger: logger}
}

// MountRoutes registers the chat route. Authentication middleware must run
// before it.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.chat)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalFromContext(r.Context())
	if principalID == "" {
		httpx.Fail(w, errNoPrincipal)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req chatRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("decode admin chat request", slog.Any("error", err))
		httpx.Fail(w, err)
		return
	}

	reply, err := h.interpreter.Interpret(r.Context(), Request{
		PrincipalID:    principalID,
		Message:        req.Message,
		IdempotencyKey: r.Header.Get(IdempotencyHeader),
	})
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	httpx.Respond(w, reply)
}
