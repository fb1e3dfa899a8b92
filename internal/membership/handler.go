// internal/membership/handler.go
package membership

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"gymflow/internal/admin"
	"gymflow/internal/ledger"
	"gymflow/internal/logger"
	"gymflow/internal/notify"
	"gymflow/internal/settings"
)

// maxBodyBytes bounds request bodies. Registrations carry a photo as a data URI.
const maxBodyBytes = 8 << 20

type Handler struct {
	service  Service
	admin    *admin.Handler
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(service Service, adminHandler *admin.Handler, log *logger.Logger) *Handler {
	return &Handler{
		service:  service,
		admin:    adminHandler,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Routes returns the full HTTP surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/site", h.handleSite)
		r.Post("/registrations", h.handleRegister)
		r.Get("/members/{id}", h.handleProfile)
		r.Get("/members/{id}/contact", h.handleContact)

		r.Route("/admin", func(r chi.Router) {
			h.admin.Mount(r)
			r.Group(func(r chi.Router) {
				r.Use(h.admin.RequireSession)
				r.Get("/dashboard", h.handleDashboard)
				r.Get("/members", h.handleRoster)
				r.Post("/members/{id}/activate", h.handleActivate)
				r.Post("/members/{id}/reminder", h.handleReminder)
				r.Get("/members/{id}/history", h.handleHistory)
				r.Post("/broadcast", h.handleBroadcast)
				r.Get("/finance", h.handleFinance)
				r.Get("/settings", h.handleGetSettings)
				r.Put("/settings", h.handleSaveSettings)
			})
		})
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (h *Handler) handleSite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Site(r.Context()))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if !h.decode(w, r, &req) {
		return
	}
	reg, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	kind := ContactKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = ContactReceipt
	}
	msg, err := h.service.Contact(r.Context(), chi.URLParam(r, "id"), kind)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Dashboard(r.Context()))
}

func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.service.Roster(r.Context(), filter, r.URL.Query().Get("q")))
}

type activateRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
	Method ledger.Method    `json:"method" validate:"required"`
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if !h.decode(w, r, &req) {
		return
	}
	activation, err := h.service.Activate(r.Context(), chi.URLParam(r, "id"), *req.Amount, req.Method)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activation)
}

func (h *Handler) handleReminder(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.Reminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type broadcastRequest struct {
	Purpose   settings.Purpose `json:"purpose" validate:"required"`
	MemberIDs []string         `json:"member_ids" validate:"required,min=1,dive,required"`
}

func (h *Handler) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Broadcast(r.Context(), req.Purpose, req.MemberIDs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleFinance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Finance(r.Context()))
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Settings(r.Context()))
}

func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if !h.decode(w, r, &req) {
		return
	}
	update, err := h.service.SaveSettings(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

// decode reads and validates a JSON body into v. On failure it has already
// written the response.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMemberNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrPhotoRequired),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrNoRecipients),
		errors.Is(err, ErrUnknownContact),
		errors.Is(err, ledger.ErrInvalidMethod),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, settings.ErrUnknownPurpose),
		errors.Is(err, settings.ErrInvalid),
		errors.Is(err, notify.ErrNoDestination),
		errors.Is(err, notify.ErrMissingValue):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Errorw("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
