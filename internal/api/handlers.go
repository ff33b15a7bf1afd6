package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "grant-intake/internal/common/errors"
	"grant-intake/internal/common/logger"
	"grant-intake/internal/common/metrics"
	"grant-intake/internal/common/observability"
	"grant-intake/internal/common/validation"
	"grant-intake/internal/models"
	"grant-intake/internal/store"
	"grant-intake/internal/validator"
)

const DefaultMaxBodyBytes = 32 << 20

// Opaque messages for server-side failures.
const (
	msgSubmitApplication = "Failed to submit application"
	msgFetchApplications = "Failed to fetch applications"
	msgSubmitContact     = "Failed to submit contact form"
	msgFetchContacts     = "Failed to fetch contact submissions"
	msgSendTest          = "Failed to send test message"
)

// Handler serves the intake and admin endpoints.
type Handler struct {
	store      store.Store
	validator  *validator.Validator
	dispatcher Dispatcher
	notifier   TestSender
	logger     logger.Logger
	obs        *observability.Observability
	errs       *apperrors.ErrorHandler
	maxBody    int64
}

func NewHandler(deps Deps, errs *apperrors.ErrorHandler) *Handler {
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handler{
		store:      deps.Store,
		validator:  deps.Validator,
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		logger:     deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
		obs:        deps.Observability,
		errs:       errs,
		maxBody:    maxBody,
	}
}

// Register mounts the /api routes. admin guards the read and test endpoints.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/applications", h.HandleCreateApplication)
	r.Post("/contact", h.HandleCreateContact)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/applications", h.HandleListApplications)
		r.Get("/applications/{id}", h.HandleGetApplication)
		r.Get("/contact", h.HandleListContacts)
		r.Get("/contact/{id}", h.HandleGetContact)
		r.Post("/notifications/test", h.HandleSendTest)
	})
}

type applicationResponse struct {
	Success     bool                `json:"success"`
	Application *models.Application `json:"application"`
}

type contactResponse struct {
	Success bool            `json:"success"`
	Contact *models.Contact `json:"contact"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleCreateApplication handles POST /api/applications.
func (h *Handler) HandleCreateApplication(w http.ResponseWriter, r *http.Request) {
	const kind = models.KindApplication
	start := time.Now()

	raw, err := h.decodeObject(w, r)
	if err != nil {
		h.finish(r, kind, metrics.OutcomeRejected, start)
		h.errs.Handle(w, r, err, msgSubmitApplication)
		return
	}

	res := h.validator.ValidateApplication(raw)
	if !res.OK {
		h.rejectInvalid(w, r, kind, res.Errors, start)
		return
	}

	app, err := h.store.CreateApplication(r.Context(), res.Value)
	if err != nil {
		h.finish(r, kind, metrics.OutcomeFailed, start)
		h.errs.Handle(w, r, apperrors.NewStoreInsertFailedError(string(kind), err), msgSubmitApplication)
		return
	}

	h.dispatcher.DispatchApplication(*app)
	h.finish(r, kind, metrics.OutcomeAccepted, start)
	h.logger.Info("application accepted", map[string]interface{}{
		"requestId":     middleware.GetReqID(r.Context()),
		"applicationId": app.ID,
	})

	apperrors.WriteJSON(w, http.StatusOK, applicationResponse{Success: true, Application: app})
}

// HandleCreateContact handles POST /api/contact.
func (h *Handler) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	const kind = models.KindContact
	start := time.Now()

	raw, err := h.decodeObject(w, r)
	if err != nil {
		h.finish(r, kind, metrics.OutcomeRejected, start)
		h.errs.Handle(w, r, err, msgSubmitContact)
		return
	}

	res := h.validator.ValidateContact(raw)
	if !res.OK {
		h.rejectInvalid(w, r, kind, res.Errors, start)
		return
	}

	c, err := h.store.CreateContact(r.Context(), res.Value)
	if err != nil {
		h.finish(r, kind, metrics.OutcomeFailed, start)
		h.errs.Handle(w, r, apperrors.NewStoreInsertFailedError(string(kind), err), msgSubmitContact)
		return
	}

	h.dispatcher.DispatchContact(*c)
	h.finish(r, kind, metrics.OutcomeAccepted, start)
	h.logger.Info("contact accepted", map[string]interface{}{
		"requestId": middleware.GetReqID(r.Context()),
		"contactId": c.ID,
	})

	apperrors.WriteJSON(w, http.StatusOK, contactResponse{Success: true, Contact: c})
}

// HandleListApplications handles GET /api/applications.
func (h *Handler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.store.ListApplications(r.Context())
	if err != nil {
		h.errs.Handle(w, r, apperrors.NewStoreReadFailedError("applications", err), msgFetchApplications)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, apps)
}

// HandleGetApplication handles GET /api/applications/{id}.
func (h *Handler) HandleGetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	app, err := h.store.GetApplication(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.errs.Handle(w, r, apperrors.NewNotFoundError("application", id), "")
		return
	}
	if err != nil {
		h.errs.Handle(w, r, apperrors.NewStoreReadFailedError("application", err), msgFetchApplications)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, app)
}

// HandleListContacts handles GET /api/contact.
func (h *Handler) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.ListContacts(r.Context())
	if err != nil {
		h.errs.Handle(w, r, apperrors.NewStoreReadFailedError("contacts", err), msgFetchContacts)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, contacts)
}

// HandleGetContact handles GET /api/contact/{id}.
func (h *Handler) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.store.GetContact(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.errs.Handle(w, r, apperrors.NewNotFoundError("contact", id), "")
		return
	}
	if err != nil {
		h.errs.Handle(w, r, apperrors.NewStoreReadFailedError("contact", err), msgFetchContacts)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, c)
}

// HandleSendTest handles POST /api/notifications/test. Delivery runs inline
// so the caller learns whether it worked.
func (h *Handler) HandleSendTest(w http.ResponseWriter, r *http.Request) {
	if err := h.notifier.SendTest(r.Context()); err != nil {
		h.errs.Handle(w, r, err, msgSendTest)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Test message sent successfully"})
}

func (h *Handler) rejectInvalid(w http.ResponseWriter, r *http.Request, kind models.SubmissionKind, fields []validation.FieldError, start time.Time) {
	for _, f := range fields {
		metrics.ValidationFailures.WithLabelValues(string(kind), f.Field).Inc()
	}
	h.finish(r, kind, metrics.OutcomeRejected, start)
	h.errs.Handle(w, r, apperrors.NewValidationError(fields), "")
}

func (h *Handler) finish(r *http.Request, kind models.SubmissionKind, outcome string, start time.Time) {
	metrics.SubmissionsTotal.WithLabelValues(string(kind), outcome).Inc()
	h.obs.RecordSubmission(r.Context(), string(kind), outcome)
	h.obs.RecordSubmissionDuration(r.Context(), string(kind), time.Since(start), outcome)
}

// decodeObject reads a single JSON object from the body, bounded by maxBody.
func (h *Handler) decodeObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apperrors.NewPayloadTooLargeError(tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return nil, apperrors.NewBadRequestError("request body is empty")
		default:
			return nil, apperrors.NewBadRequestError("malformed JSON: " + err.Error())
		}
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewBadRequestError("request body must be a JSON object")
	}
	if dec.More() {
		return nil, apperrors.NewBadRequestError("request body must contain a single JSON object")
	}
	return obj, nil
}
