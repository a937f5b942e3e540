package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"hallbook/internal/timeslots/repository"
	"hallbook/internal/timeslots/service"
	apperrors "hallbook/pkg/errors"
	httputil "hallbook/pkg/http"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

type TimeSlotHandler struct {
	service service.TimeSlotService
	log     *logger.Logger
}

func NewTimeSlotHandler(service service.TimeSlotService, log *logger.Logger) *TimeSlotHandler {
	return &TimeSlotHandler{
		service: service,
		log:     log,
	}
}

func (h *TimeSlotHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var slot model.TimeSlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), &slot); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, slot)
}

func (h *TimeSlotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slot, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, slot)
}

func (h *TimeSlotHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter := repository.SearchFilter{
		HallID:   r.URL.Query().Get("hall_id"),
		TeamID:   r.URL.Query().Get("team_id"),
		Status:   r.URL.Query().Get("status"),
		SlotType: r.URL.Query().Get("slot_type"),
	}

	slots, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, slots, total, limit, int(offset))
}

func (h *TimeSlotHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.TimeSlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	slot, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, slot)
}

func (h *TimeSlotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *TimeSlotHandler) Assign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var assignment model.TimeSlotTeamAssignment
	if err := json.NewDecoder(r.Body).Decode(&assignment); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}
	assignment.TimeSlotID = ps.ByName("id")

	if err := h.service.Assign(r.Context(), &assignment); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, assignment)
}

func (h *TimeSlotHandler) Unassign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Unassign(r.Context(), ps.ByName("id"), ps.ByName("teamId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *TimeSlotHandler) Assignments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	assignments, err := h.service.Assignments(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, assignments)
}

func (h *TimeSlotHandler) Occurrences(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from, to, err := dateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	occurrences, err := h.service.Occurrences(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, occurrences)
}

func (h *TimeSlotHandler) Materialize(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from, to, err := dateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.MaterializeBookings(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]int{"bookings_created": created})
}

// dateRange reads the from/to query parameters, defaulting to the next
// seven days.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := model.DateOnly(now)
	to := from.AddDate(0, 0, 7)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := model.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("from must be a YYYY-MM-DD date")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := model.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("to must be a YYYY-MM-DD date")
		}
		to = parsed
	}
	return from, to, nil
}

func (h *TimeSlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/timeslots", h.Create)
	router.GET("/api/v1/timeslots", h.GetAll)
	router.GET("/api/v1/timeslots/id/:id", h.GetByID)
	router.PUT("/api/v1/timeslots/id/:id", h.Update)
	router.DELETE("/api/v1/timeslots/id/:id", h.Delete)
	router.POST("/api/v1/timeslots/id/:id/assignments", h.Assign)
	router.GET("/api/v1/timeslots/id/:id/assignments", h.Assignments)
	router.DELETE("/api/v1/timeslots/id/:id/assignments/:teamId", h.Unassign)
	router.GET("/api/v1/timeslots/id/:id/occurrences", h.Occurrences)
	router.POST("/api/v1/timeslots/id/:id/materialize", h.Materialize)
}
