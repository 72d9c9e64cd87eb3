package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/middleware"
	"github.com/adamsuskin/grocery-sub012/internal/service"
	"github.com/adamsuskin/grocery-sub012/pkg/response"
)

type SyncHandler struct {
	syncService *service.SyncService
	validator   *validator.Validate
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		validator:   validator.New(),
	}
}

func (h *SyncHandler) ProcessSync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req domain.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	res, err := h.syncService.ProcessSyncRequest(userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, res)
}

func (h *SyncHandler) GetChanges(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	sinceParam := r.URL.Query().Get("since")
	var since time.Time
	if sinceParam != "" {
		var err error
		since, err = time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			response.BadRequest(w, "invalid since parameter")
			return
		}
	}

	changes, err := h.syncService.GetChangesSince(userID, since)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"changes":   changes,
		"sync_time": time.Now(),
	})
}

func (h *SyncHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	listID := r.URL.Query().Get("list_id")

	manifest, err := h.syncService.GetManifest(userID, listID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, manifest)
}

func (h *SyncHandler) BatchDiff(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req domain.BatchDiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	diff, err := h.syncService.ProcessBatchDiff(userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, diff)
}
