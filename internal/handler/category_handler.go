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

type CategoryHandler struct {
	categoryService *service.CategoryService
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
	}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	category, err := h.categoryService.Create(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create category")
		return
	}

	response.Created(w, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	categories, err := h.categoryService.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list categories")
		return
	}

	response.Success(w, categories)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["id"]

	var req domain.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(r)

	category, err := h.categoryService.Update(userID, categoryID, &req)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			response.Forbidden(w, "Access denied")
			return
		}
		response.NotFound(w, "Category not found")
		return
	}

	response.Success(w, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.categoryService.Delete(userID, categoryID); err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			response.Forbidden(w, "Access denied")
			return
		}
		response.NotFound(w, "Category not found")
		return
	}

	response.Success(w, map[string]string{"message": "Category deleted successfully"})
}
