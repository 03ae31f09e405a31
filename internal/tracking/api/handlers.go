package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"tutor-track/internal/shared/auth"
	"tutor-track/internal/shared/util"
	"tutor-track/internal/shared/validation"
	"tutor-track/internal/tracking/app"
	"tutor-track/internal/tracking/domain"
)

const handlerTimeout = 5 * time.Second

type Handler struct {
	service *app.TrackingService
	logger  *util.Logger
}

func NewHandler(service *app.TrackingService, logger *util.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrInvalidSequence):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrJourneyNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrJourneyNotActive),
		errors.Is(err, domain.ErrDuplicateStart),
		errors.Is(err, domain.ErrNoLocationFix):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTooFarToArrive):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, instance string, err error, start time.Time) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(instance, err)
		message = "internal error"
	}
	util.WriteJSONError(w, message, status)
	h.logger.HTTP(status, time.Since(start), r.RemoteAddr, r.Method, r.URL.Path)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body interface{}, start time.Time) {
	util.ResponseInJson(w, status, body)
	h.logger.HTTP(status, time.Since(start), r.RemoteAddr, r.Method, r.URL.Path)
}

func (h *Handler) StartJourneyHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.StartJourney"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	var input startJourneyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		util.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateUUID(input.SessionID); err != nil {
		util.WriteJSONError(w, "session_id must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	journey, err := h.service.StartJourney(ctx, ident.UserID, input.SessionID)
	if err != nil {
		h.writeError(w, r, instance, err, start)
		return
	}
	h.respond(w, r, http.StatusCreated, toJourneyResponse(journey), start)
}

func (h *Handler) UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.UpdateLocation"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	journeyID := r.PathValue("journey_id")
	if err := validation.ValidateUUID(journeyID); err != nil {
		util.WriteJSONError(w, "journey_id must be a UUID", http.StatusBadRequest)
		return
	}

	var input locationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		util.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if input.AccuracyM != nil {
		if err := validation.ValidateAccuracy(*input.AccuracyM); err != nil {
			util.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if input.SpeedKmh != nil {
		if err := validation.ValidateSpeed(*input.SpeedKmh); err != nil {
			util.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if input.HeadingDeg != nil {
		if err := validation.ValidateHeading(*input.HeadingDeg); err != nil {
			util.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	ping := domain.Position{
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		AccuracyM:  input.AccuracyM,
		SpeedKmh:   input.SpeedKmh,
		HeadingDeg: input.HeadingDeg,
		Sequence:   input.Sequence,
	}
	entry, err := h.service.UpdateLocation(ctx, ident.UserID, journeyID, ping)
	if err != nil {
		// Out-of-order delivery is routine, not a failure: the ping was
		// received and deliberately dropped.
		if errors.Is(err, domain.ErrStaleSequence) {
			h.respond(w, r, http.StatusOK, locationResponse{Accepted: false, Reason: "stale_sequence"}, start)
			return
		}
		h.writeError(w, r, instance, err, start)
		return
	}
	h.respond(w, r, http.StatusOK, locationResponse{Accepted: true, Sequence: entry.LastSequence}, start)
}

func (h *Handler) MarkArrivedHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.MarkArrived"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	journeyID := r.PathValue("journey_id")
	if err := validation.ValidateUUID(journeyID); err != nil {
		util.WriteJSONError(w, "journey_id must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	journey, distance, err := h.service.MarkArrived(ctx, ident.UserID, journeyID)
	if err != nil {
		if errors.Is(err, domain.ErrTooFarToArrive) {
			h.respond(w, r, http.StatusUnprocessableEntity, arrivalRejectedResponse{
				Error:          err.Error(),
				DistanceMeters: distance,
			}, start)
			return
		}
		h.writeError(w, r, instance, err, start)
		return
	}
	h.respond(w, r, http.StatusOK, arrivedResponse{
		JourneyID:      journey.ID,
		Status:         string(journey.Status),
		DistanceMeters: distance,
	}, start)
}

func (h *Handler) EndJourneyHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.EndJourney"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	journeyID := r.PathValue("journey_id")
	if err := validation.ValidateUUID(journeyID); err != nil {
		util.WriteJSONError(w, "journey_id must be a UUID", http.StatusBadRequest)
		return
	}

	// The body is optional; when present, cancelled is the only reason a
	// trainer may give. Arrivals go through /arrived, the rest are internal.
	var input endJourneyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		util.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if input.Reason != "" && input.Reason != string(domain.ReasonCancelled) {
		util.WriteJSONError(w, `reason must be "cancelled"`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	journey, err := h.service.EndJourney(ctx, ident.UserID, journeyID)
	if err != nil {
		h.writeError(w, r, instance, err, start)
		return
	}
	h.respond(w, r, http.StatusOK, toJourneyResponse(journey), start)
}

func (h *Handler) GetJourneyHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.GetJourney"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	journeyID := r.PathValue("journey_id")
	if err := validation.ValidateUUID(journeyID); err != nil {
		util.WriteJSONError(w, "journey_id must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	journey, err := h.service.GetJourney(ctx, ident.UserID, journeyID)
	if err != nil {
		h.writeError(w, r, instance, err, start)
		return
	}
	h.respond(w, r, http.StatusOK, toJourneyResponse(journey), start)
}

func (h *Handler) LiveLocationHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.LiveLocation"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	journeyID := r.PathValue("journey_id")
	if err := validation.ValidateUUID(journeyID); err != nil {
		util.WriteJSONError(w, "journey_id must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	view, err := h.service.GetLiveLocation(ctx, ident.UserID, journeyID)
	if err != nil {
		h.writeError(w, r, instance, err, start)
		return
	}
	h.respond(w, r, http.StatusOK, toLiveResponse(view), start)
}

func (h *Handler) SessionJourneyHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.SessionJourney"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	sessionID := r.PathValue("session_id")
	if err := validation.ValidateUUID(sessionID); err != nil {
		util.WriteJSONError(w, "session_id must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	journey, err := h.service.ActiveJourneyForSession(ctx, ident.UserID, sessionID)
	if err != nil {
		h.writeError(w, r, instance, err, start)
		return
	}
	resp := sessionJourneyResponse{SessionID: sessionID}
	if journey != nil {
		resp.Journey = toJourneyResponse(journey)
	}
	h.respond(w, r, http.StatusOK, resp, start)
}

func (h *Handler) SessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.SessionStatus"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	sessionID := r.PathValue("session_id")
	if err := validation.ValidateUUID(sessionID); err != nil {
		util.WriteJSONError(w, "session_id must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	view, err := h.service.SessionStatus(ctx, ident.UserID, sessionID)
	if err != nil {
		h.writeError(w, r, instance, err, start)
		return
	}
	resp := sessionStatusResponse{SessionID: view.SessionID, Status: string(view.Status)}
	if view.Journey != nil {
		resp.JourneyID = view.Journey.ID
	}
	h.respond(w, r, http.StatusOK, resp, start)
}

func (h *Handler) SafetyCheckHandler(w http.ResponseWriter, r *http.Request) {
	instance := "Handler.SafetyCheck"
	start := time.Now()
	ident, _ := auth.IdentityFromContext(r.Context())

	var input safetyCheckRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		util.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateUUID(input.SessionID); err != nil {
		util.WriteJSONError(w, "session_id must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	report, err := h.service.CheckLocationSafety(ctx, ident.UserID, input.SessionID, input.Latitude, input.Longitude)
	if err != nil {
		h.writeError(w, r, instance, err, start)
		return
	}
	h.respond(w, r, http.StatusOK, safetyCheckResponse{
		Safe:           report.Safe,
		DistanceMeters: report.DistanceMeters,
		Alert:          report.Alert,
	}, start)
}
