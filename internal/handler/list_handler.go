package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/middleware"
	"github.com/adamsuskin/grocery-sub012/internal/service"
	"github.com/adamsuskin/grocery-sub012/pkg/response"
)

type ListHandler struct {
	listService *service.ListService
	validator   *validator.Validate
}

func NewListHandler(listService *service.ListService) *ListHandler {
	return &ListHandler{
		listService: listService,
		validator:   validator.New(),
	}
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	list, err := h.listService.Create(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create list")
		return
	}

	response.Created(w, list)
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	lists, err := h.listService.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list lists")
		return
	}

	response.Success(w, lists)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	list, err := h.listService.Get(userID, listID)
	if err != nil {
		writeListError(w, err)
		return
	}

	response.Success(w, list)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["id"]

	var req domain.UpdateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(r)

	list, err := h.listService.Update(userID, listID, &req)
	if err != nil {
		writeListError(w, err)
		return
	}

	response.Success(w, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.listService.Delete(userID, listID); err != nil {
		writeListError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "List deleted successfully"})
}

func (h *ListHandler) Share(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["id"]

	var req domain.ShareListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	list, err := h.listService.Share(userID, listID, &req)
	if err != nil {
		writeListError(w, err)
		return
	}

	response.Success(w, list)
}

func (h *ListHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := middleware.GetUserID(r)

	list, err := h.listService.Unshare(userID, vars["id"], vars["userId"])
	if err != nil {
		writeListError(w, err)
		return
	}

	response.Success(w, list)
}

func writeListError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrListNotFound):
		response.NotFound(w, "List not found")
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(w, "Access denied")
	default:
		response.BadRequest(w, err.Error())
	}
}
