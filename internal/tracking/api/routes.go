package api

import (
	"net/http"

	"tutor-track/internal/shared/auth"
	"tutor-track/internal/shared/middleware"
)

// RegisterRoutes builds the HTTP surface. Role gates live at the route
// level; per-journey and per-session ownership is enforced inside the
// service against the explicit caller identity.
func (h *Handler) RegisterRoutes(secret []byte, hub *StudentHub, health http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()
	authn := Authenticate(secret)

	trainer := func(fn http.HandlerFunc) http.Handler {
		return authn(RequireRole(auth.RoleTrainer, fn))
	}
	student := func(fn http.HandlerFunc) http.Handler {
		return authn(RequireRole(auth.RoleStudent, fn))
	}
	participant := func(fn http.HandlerFunc) http.Handler {
		return authn(fn)
	}

	mux.Handle("POST /journeys", trainer(h.StartJourneyHandler))
	mux.Handle("POST /journeys/{journey_id}/location", trainer(h.UpdateLocationHandler))
	mux.Handle("POST /journeys/{journey_id}/arrived", trainer(h.MarkArrivedHandler))
	mux.Handle("POST /journeys/{journey_id}/end", trainer(h.EndJourneyHandler))
	mux.Handle("GET /journeys/{journey_id}", participant(h.GetJourneyHandler))
	mux.Handle("GET /journeys/{journey_id}/live", student(h.LiveLocationHandler))
	mux.Handle("GET /sessions/{session_id}/journey", participant(h.SessionJourneyHandler))
	mux.Handle("GET /sessions/{session_id}/status", participant(h.SessionStatusHandler))
	mux.Handle("POST /safety/check", participant(h.SafetyCheckHandler))
	mux.HandleFunc("GET /ws/students/{student_id}", hub.StudentWSHandler)
	mux.HandleFunc("GET /health", health)

	return middleware.RequestID(mux)
}
