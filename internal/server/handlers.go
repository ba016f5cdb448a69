// File: internal/server/handlers.go
package server

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
	"github.com/pitist/mi-orquestador-mvp/internal/audit"
	"github.com/pitist/mi-orquestador-mvp/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AuditCompleted is the status string returned by the audit endpoint.
const AuditCompleted = "Audit completed"

// Auditor runs one simulated audit.
type Auditor interface {
	Generate(ctx context.Context) audit.Result
}

// LeanChecker runs the simulated verified-logic step.
type LeanChecker interface {
	Check(ctx context.Context) (string, error)
}

// HealthProber reports the state of the configured database.
type HealthProber interface {
	Status(ctx context.Context) store.State
}

// AuditResponse is the JSON body of GET /api/audit.
type AuditResponse struct {
	Status          string            `json:"status"`
	AuditID         string            `json:"audit_id"`
	Vulnerabilities []schemas.Finding `json:"vulnerabilities"`
}

// StatusResponse is the JSON body of GET /api/lean_check.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the JSON body of GET /healthz.
type HealthResponse struct {
	Status   string      `json:"status"`
	Database store.State `json:"database"`
}

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers manages the HTTP request handling for the service.
type Handlers struct {
	log     *zap.Logger
	auditor Auditor
	lean    LeanChecker
	health  HealthProber
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(logger *zap.Logger, auditor Auditor, lean LeanChecker, health HealthProber) *Handlers {
	return &Handlers{
		log:     logger.Named("handlers"),
		auditor: auditor,
		lean:    lean,
		health:  health,
	}
}

// HandleAudit runs an audit and returns its prioritized findings.
func (h *Handlers) HandleAudit(w http.ResponseWriter, r *http.Request) {
	h.log.Info("Request received for audit")

	res := h.auditor.Generate(r.Context())
	findings := res.Findings
	if findings == nil {
		findings = []schemas.Finding{}
	}

	h.respond(w, http.StatusOK, AuditResponse{
		Status:          AuditCompleted,
		AuditID:         res.AuditID,
		Vulnerabilities: findings,
	})
}

// HandleLeanCheck runs the simulated verified-logic step.
func (h *Handlers) HandleLeanCheck(w http.ResponseWriter, r *http.Request) {
	h.log.Info("Request received for lean check")

	status, err := h.lean.Check(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.respond(w, http.StatusOK, StatusResponse{Status: status})
}

// HandleHealthCheck reports liveness plus the database probe result. Only a
// reachable-but-failing database makes the service unhealthy.
func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	state := h.health.Status(r.Context())
	code := http.StatusOK
	status := "ok"
	if state == store.StateDown {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	h.respond(w, code, HealthResponse{Status: status, Database: state})
}

// HandleNotFound answers unknown routes with a JSON error.
func (h *Handlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.respondWithError(w, http.StatusNotFound, "not found: "+r.URL.Path)
}

// respondWithError sends a standardized JSON error response.
func (h *Handlers) respondWithError(w http.ResponseWriter, statusCode int, message string) {
	h.respond(w, statusCode, ErrorResponse{Error: message})
}

func (h *Handlers) respond(w http.ResponseWriter, statusCode int, body interface{}) {
	writeJSON(w, statusCode, body, h.log)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", zap.Error(err))
	}
}
