package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/middleware"
	"github.com/adamsuskin/grocery-sub012/internal/service"
	"github.com/adamsuskin/grocery-sub012/pkg/response"
)

type ItemHandler struct {
	itemService *service.ItemService
	validator   *validator.Validate
}

func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		validator:   validator.New(),
	}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	item, err := h.itemService.Create(userID, &req)
	if err != nil {
		writeItemError(w, err)
		return
	}

	response.Created(w, item)
}

func (h *ItemHandler) ListByList(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["listId"]
	userID := middleware.GetUserID(r)

	items, err := h.itemService.List(userID, listID)
	if err != nil {
		writeItemError(w, err)
		return
	}

	response.Success(w, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	item, err := h.itemService.GetByID(userID, itemID)
	if err != nil {
		writeItemError(w, err)
		return
	}

	response.Success(w, item)
}

// Update carries the optimistic write. When the expected version no
// longer matches, the detected conflict comes back as the 409 payload
// so the client can render its resolution UI.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["id"]

	var req domain.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(r)

	item, err := h.itemService.Update(userID, itemID, &req)
	if err != nil {
		var conflictErr *service.ConflictError
		if errors.As(err, &conflictErr) {
			response.Conflict(w, map[string]interface{}{
				"conflict": conflictErr.Conflict,
			})
			return
		}
		writeItemError(w, err)
		return
	}

	response.Success(w, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["id"]
	clientID := r.URL.Query().Get("client_id")
	userID := middleware.GetUserID(r)

	if err := h.itemService.Delete(userID, itemID, clientID); err != nil {
		writeItemError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Item deleted successfully"})
}

func (h *ItemHandler) History(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	versions, err := h.itemService.History(userID, itemID, limit)
	if err != nil {
		writeItemError(w, err)
		return
	}

	response.Success(w, versions)
}

func writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrListNotFound):
		response.NotFound(w, "List not found")
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(w, "Access denied")
	case errors.Is(err, service.ErrItemDeleted):
		response.Error(w, http.StatusGone, "Item has been deleted")
	default:
		response.InternalError(w, err.Error())
	}
}
