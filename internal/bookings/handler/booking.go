package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hallbook/internal/bookings/repository"
	"hallbook/internal/bookings/service"
	httputil "hallbook/pkg/http"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// Create admits a booking. Submitting with status "pending" stages the
// booking for a later confirmation step instead of confirming it
// immediately.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Admit(r.Context(), &booking); err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.service.CancellationToken(&booking)
	if err != nil {
		h.log.Warn("Failed to build cancellation token", "booking_id", booking.ID, "error", err)
		httputil.WriteCreated(w, booking)
		return
	}

	httputil.WriteCreated(w, map[string]any{
		"booking":            booking,
		"cancellation_token": token,
	})
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter := repository.SearchFilter{
		HallID: r.URL.Query().Get("hall_id"),
		TeamID: r.URL.Query().Get("team_id"),
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := model.ParseDate(raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "date must be formatted YYYY-MM-DD",
			})
			return
		}
		filter.Date = &date
	}

	bookings, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, int(offset))
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Confirm(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Reason string `json:"reason"`
	}
	// An empty body is fine, the reason is optional.
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), body.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// CancelByToken serves the self-service cancellation link embedded in
// confirmation messages.
func (h *BookingHandler) CancelByToken(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.CancelByToken(r.Context(), ps.ByName("token")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]string{"status": "cancelled"})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Complete(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) NoShow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.NoShow(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Reason     string `json:"reason"`
		ReleasedBy string `json:"released_by"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := h.service.Release(r.Context(), ps.ByName("id"), body.Reason, body.ReleasedBy); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Substitute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		SubstituteTeamID string `json:"substitute_team_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	replacement, err := h.service.Substitute(r.Context(), ps.ByName("id"), body.SubstituteTeamID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, replacement)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hallID := r.URL.Query().Get("hall_id")
	if hallID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "hall_id is required",
		})
		return
	}

	date, err := model.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "date must be formatted YYYY-MM-DD",
		})
		return
	}

	windows, err := h.service.Availability(r.Context(), hallID, date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"hall_id": hallID,
		"date":    model.FormatDate(date),
		"free":    windows,
	})
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/complete", h.Complete)
	router.POST("/api/v1/bookings/id/:id/no-show", h.NoShow)
	router.POST("/api/v1/bookings/id/:id/release", h.Release)
	router.POST("/api/v1/bookings/id/:id/substitute", h.Substitute)
	router.GET("/api/v1/bookings/cancel/:token", h.CancelByToken)
	router.GET("/api/v1/availability", h.Availability)
}
