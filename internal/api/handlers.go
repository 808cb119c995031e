// Package api exposes HTTP handlers for the activities service.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/static"
)

// IndexPath is where GET / redirects to.
const IndexPath = "/static/index.html"

// statusByKind is the single mapping from registry failures to HTTP statuses.
var statusByKind = map[domain.ErrorKind]int{
	domain.KindInvalidDomain:       http.StatusBadRequest,
	domain.KindAlreadyEnrolled:     http.StatusBadRequest,
	domain.KindAtCapacity:          http.StatusBadRequest,
	domain.KindActivityNotFound:    http.StatusNotFound,
	domain.KindParticipantNotFound: http.StatusNotFound,
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", index)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static.FS())))
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{activity}/signup", h.signup)
	mux.HandleFunc("DELETE /activities/{activity}/participants", h.unregister)
	mux.HandleFunc("GET /healthz", healthz)
}

func index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	catalog := h.service.ListActivities(r.Context())
	writeJSON(w, http.StatusOK, toActivitiesResponse(catalog))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	activity := r.PathValue("activity")
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	confirmation, err := h.service.Signup(r.Context(), activity, email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: confirmation.Message})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	activity := r.PathValue("activity")
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	confirmation, err := h.service.Unregister(r.Context(), activity, email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: confirmation.Message})
}

// requireEmail rejects a request without an email parameter. Empty and blank
// values are passed on and fail the registry checks instead.
func requireEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := r.URL.Query()
	if !query.Has("email") {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "email query parameter is required")
		return "", false
	}
	return query.Get("email"), true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		if status, ok := statusByKind[domainErr.Kind]; ok {
			writeError(w, status, string(domainErr.Kind), domainErr.Detail)
			return
		}
	}
	h.logger.Error("unhandled service error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
}

// MessageResponse is the body of successful signup and unregister calls.
type MessageResponse struct {
	Message string `json:"message"`
}

// ActivityView exposes an activity's details and roster.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ActivitiesResponse is the GET /activities body: a JSON object keyed by
// activity name, written in catalogue order.
type ActivitiesResponse struct {
	Names []string
	Views []ActivityView
}

// MarshalJSON writes the activities as one object preserving order.
func (a ActivitiesResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range a.Names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(a.Views[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func toActivitiesResponse(catalog domain.Catalog) ActivitiesResponse {
	resp := ActivitiesResponse{
		Names: make([]string, 0, len(catalog.Activities)),
		Views: make([]ActivityView, 0, len(catalog.Activities)),
	}
	for _, activity := range catalog.Activities {
		participants := activity.Participants
		if participants == nil {
			participants = []string{}
		}
		resp.Names = append(resp.Names, activity.Name)
		resp.Views = append(resp.Views, ActivityView{
			Description:     activity.Description,
			Schedule:        activity.Schedule,
			MaxParticipants: activity.MaxParticipants,
			Participants:    participants,
		})
	}
	return resp
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
