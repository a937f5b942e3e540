package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hallbook/internal/requests/repository"
	"hallbook/internal/requests/service"
	httputil "hallbook/pkg/http"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

type RequestHandler struct {
	service service.RequestService
	log     *logger.Logger
}

func NewRequestHandler(service service.RequestService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		log:     log,
	}
}

func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Submit(r.Context(), &request); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, request)
}

func (h *RequestHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	request, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, request)
}

func (h *RequestHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	requests, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, requests, total, limit, int(offset))
}

func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		ReviewedBy string `json:"reviewed_by"`
		Notes      string `json:"notes"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	booking, err := h.service.Approve(r.Context(), ps.ByName("id"), body.ReviewedBy, body.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		ReviewedBy string `json:"reviewed_by"`
		Reason     string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := h.service.Reject(r.Context(), ps.ByName("id"), body.ReviewedBy, body.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *RequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/requests", h.Submit)
	router.GET("/api/v1/requests", h.GetAll)
	router.GET("/api/v1/requests/id/:id", h.GetByID)
	router.POST("/api/v1/requests/id/:id/approve", h.Approve)
	router.POST("/api/v1/requests/id/:id/reject", h.Reject)
	router.POST("/api/v1/requests/id/:id/cancel", h.Cancel)
}
