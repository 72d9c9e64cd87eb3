package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/service"
	"github.com/adamsuskin/grocery-sub012/internal/websocket"
	"github.com/adamsuskin/grocery-sub012/pkg/jwt"
)

type WebSocketHandler struct {
	manager   *websocket.Manager
	jwtSecret string
	upgrader  ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		manager:   manager,
		jwtSecret: jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.jwtSecret)
	if err != nil {
		log.Printf("websocket token validation failed: %v", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	userID := claims.UserID

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = "default"
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	connID := uuid.New().String()
	client := websocket.NewClient(connID, userID, clientID, conn, h.manager)

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

type WebSocketMessageHandler struct {
	syncService *service.SyncService
}

func NewWebSocketMessageHandler(syncService *service.SyncService) *WebSocketMessageHandler {
	return &WebSocketMessageHandler{
		syncService: syncService,
	}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeSyncRequest:
		return h.handleSyncRequest(client, msg)

	case websocket.TypePing:
		return h.handlePing(client)

	default:
		log.Printf("unknown message type: %s", msg.Type)
	}

	return nil
}

func (h *WebSocketMessageHandler) handleSyncRequest(client *websocket.Client, msg *websocket.Message) error {
	var payload websocket.SyncRequestPayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return err
	}

	clientID := payload.ClientID
	if clientID == "" {
		clientID = client.ClientID
	}

	syncReq := &domain.SyncRequest{
		ClientID:     clientID,
		LastSyncTime: payload.LastSyncTime,
		ItemVersions: payload.ItemVersions,
	}

	res, err := h.syncService.ProcessSyncRequest(client.UserID, syncReq)
	if err != nil {
		return err
	}

	responseMsg, err := websocket.NewMessage(websocket.TypeSyncResponse, &websocket.SyncResponsePayload{
		Changes:  convertToWSChanges(res.Changes),
		HasMore:  res.HasMore,
		SyncTime: res.SyncTime,
	})
	if err != nil {
		return err
	}

	responseBytes, _ := json.Marshal(responseMsg)
	client.Send <- responseBytes

	return nil
}

func (h *WebSocketMessageHandler) handlePing(client *websocket.Client) error {
	pongMsg, err := websocket.NewMessage(websocket.TypePong, nil)
	if err != nil {
		return err
	}

	pongBytes, _ := json.Marshal(pongMsg)
	client.Send <- pongBytes

	return nil
}

func convertToWSChanges(changes []*domain.ItemChange) []websocket.ItemChange {
	wsChanges := make([]websocket.ItemChange, len(changes))
	for i, c := range changes {
		data, _ := json.Marshal(c.Item)
		wsChanges[i] = websocket.ItemChange{
			ItemID:    c.ItemID,
			Operation: c.Operation,
			Version:   c.Version,
			Data:      data,
		}
	}
	return wsChanges
}
