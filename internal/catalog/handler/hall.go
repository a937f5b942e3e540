package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hallbook/internal/catalog/service"
	httputil "hallbook/pkg/http"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

type HallHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewHallHandler(service service.CatalogService, log *logger.Logger) *HallHandler {
	return &HallHandler{
		service: service,
		log:     log,
	}
}

func (h *HallHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var hall model.Hall
	if err := json.NewDecoder(r.Body).Decode(&hall); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.CreateHall(r.Context(), &hall); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, hall)
}

func (h *HallHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	hall, courts, err := h.service.GetHallWithCourts(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"hall":   hall,
		"courts": courts,
	})
}

func (h *HallHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	clubID := r.URL.Query().Get("club_id")

	halls, total, err := h.service.ListHalls(r.Context(), clubID, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, halls, total, limit, int(offset))
}

func (h *HallHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var hall model.Hall
	if err := json.NewDecoder(r.Body).Decode(&hall); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.UpdateHall(r.Context(), id, &hall); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HallHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.DeactivateHall(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HallHandler) GetCourts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hallID := ps.ByName("id")

	courts, err := h.service.ListCourts(r.Context(), hallID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, courts)
}

func (h *HallHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/halls", h.Create)
	router.GET("/api/v1/halls", h.GetAll)
	router.GET("/api/v1/halls/id/:id", h.GetByID)
	router.PATCH("/api/v1/halls/id/:id", h.Update)
	router.DELETE("/api/v1/halls/id/:id", h.Deactivate)
	router.GET("/api/v1/halls/id/:id/courts", h.GetCourts)
}
