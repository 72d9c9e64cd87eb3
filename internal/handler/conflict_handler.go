package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/adamsuskin/grocery-sub012/internal/conflict"
	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/middleware"
	"github.com/adamsuskin/grocery-sub012/internal/service"
	"github.com/adamsuskin/grocery-sub012/pkg/response"
)

type ConflictHandler struct {
	conflictService *service.ConflictService
	listService     *service.ListService
	validator       *validator.Validate
}

func NewConflictHandler(conflictService *service.ConflictService, listService *service.ListService) *ConflictHandler {
	return &ConflictHandler{
		conflictService: conflictService,
		listService:     listService,
		validator:       validator.New(),
	}
}

// List returns every open conflict on lists the user belongs to,
// highest priority first.
func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var visible []*domain.Conflict
	for _, c := range h.conflictService.ListOpen() {
		if _, err := h.listService.ValidateAccess(userID, c.ListID); err == nil {
			visible = append(visible, c)
		}
	}

	response.Success(w, visible)
}

// Feed returns the bounded notification view of open conflicts.
func (h *ConflictHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var visible []*domain.Conflict
	for _, c := range h.conflictService.Feed() {
		if _, err := h.listService.ValidateAccess(userID, c.ListID); err == nil {
			visible = append(visible, c)
		}
	}

	response.Success(w, visible)
}

func (h *ConflictHandler) Get(w http.ResponseWriter, r *http.Request) {
	conflictID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	c := h.conflictService.Get(conflictID)
	if c == nil {
		response.NotFound(w, "Conflict not found")
		return
	}

	if _, err := h.listService.ValidateAccess(userID, c.ListID); err != nil {
		response.Forbidden(w, "Access denied")
		return
	}

	response.Success(w, c)
}

func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	conflictID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	var req domain.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	c := h.conflictService.Get(conflictID)
	if c == nil {
		// The conflict was already resolved or dismissed elsewhere; not
		// an error worth surfacing as one.
		response.NotFound(w, "Conflict not found")
		return
	}

	if _, err := h.listService.ValidateAccess(userID, c.ListID); err != nil {
		response.Forbidden(w, "Access denied")
		return
	}

	item, err := h.conflictService.Resolve(r.Context(), conflictID, &req)
	if err != nil {
		writeConflictError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"message": "conflict resolved",
		"item":    item,
	})
}

func (h *ConflictHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	conflictID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	c := h.conflictService.Get(conflictID)
	if c == nil {
		response.NotFound(w, "Conflict not found")
		return
	}

	if _, err := h.listService.ValidateAccess(userID, c.ListID); err != nil {
		response.Forbidden(w, "Access denied")
		return
	}

	if err := h.conflictService.Dismiss(conflictID); err != nil {
		writeConflictError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "conflict dismissed"})
}

func (h *ConflictHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	entries, err := h.conflictService.HistoryByUser(userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Success(w, entries)
}

// Status reports the sync engine state for status-pill style UIs.
func (h *ConflictHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.conflictService.Status()

	var lastError string
	if err := status.LastError(); err != nil {
		lastError = err.Error()
	}

	response.Success(w, map[string]interface{}{
		"state":      string(status.State()),
		"online":     status.IsOnline(),
		"last_error": lastError,
	})
}

func writeConflictError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conflict.ErrNotFound):
		response.NotFound(w, "Conflict not found")
	case errors.Is(err, conflict.ErrResolutionInFlight):
		response.Error(w, http.StatusConflict, "A resolution for this item is already in flight")
	case errors.Is(err, conflict.ErrValidation):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
