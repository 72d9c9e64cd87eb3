package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/config"
	"github.com/adamsuskin/grocery-sub012/internal/conflict"
	"github.com/adamsuskin/grocery-sub012/internal/handler"
	"github.com/adamsuskin/grocery-sub012/internal/middleware"
	"github.com/adamsuskin/grocery-sub012/internal/repository"
	"github.com/adamsuskin/grocery-sub012/internal/service"
	"github.com/adamsuskin/grocery-sub012/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	exists, err := client.DBExists(context.Background(), cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(context.Background(), cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	listRepo := repository.NewListRepository(client, cfg.Database.Name)
	itemRepo := repository.NewItemRepository(client, cfg.Database.Name)
	categoryRepo := repository.NewCategoryRepository(client, cfg.Database.Name)
	versionRepo := repository.NewItemVersionRepository(client, cfg.Database.Name)
	syncMetadataRepo := repository.NewSyncMetadataRepository(client, cfg.Database.Name)
	conflictLogRepo := repository.NewConflictLogRepository(client, cfg.Database.Name)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	statusTracker := conflict.NewStatusTracker(nil)
	statusTracker.MarkSynced()

	listService := service.NewListService(listRepo, itemRepo, userRepo)
	syncService := service.NewSyncService(itemRepo, listRepo, syncMetadataRepo, wsManager)
	conflictService := service.NewConflictService(
		itemRepo,
		versionRepo,
		conflictLogRepo,
		listService,
		wsManager,
		statusTracker,
		conflict.FeedConfig{
			MaxVisible: cfg.Conflict.MaxVisible,
			Countdown:  cfg.Conflict.AutoResolveCountdown,
		},
	)
	itemService := service.NewItemService(itemRepo, versionRepo, userRepo, listService, conflictService, syncService)
	authService := service.NewAuthService(userRepo, listService, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)

	wsMessageHandler := handler.NewWebSocketMessageHandler(syncService)
	wsManager.SetMessageHandler(wsMessageHandler)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	listHandler := handler.NewListHandler(listService)
	itemHandler := handler.NewItemHandler(itemService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	syncHandler := handler.NewSyncHandler(syncService)
	conflictHandler := handler.NewConflictHandler(conflictService, listService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/users/me", userHandler.Me).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users/me", userHandler.Update).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/lists", listHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/lists", listHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/lists/{id}", listHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/lists/{id}", listHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/lists/{id}", listHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/lists/{id}/share", listHandler.Share).Methods("POST", "OPTIONS")
	protected.HandleFunc("/lists/{id}/share/{userId}", listHandler.Unshare).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/lists/{listId}/items", itemHandler.ListByList).Methods("GET", "OPTIONS")

	protected.HandleFunc("/items", itemHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/items/{id}", itemHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/items/{id}", itemHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/items/{id}", itemHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/items/{id}/history", itemHandler.History).Methods("GET", "OPTIONS")

	protected.HandleFunc("/categories", categoryHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/categories", categoryHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/categories/{id}", categoryHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/categories/{id}", categoryHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/sync/request", syncHandler.ProcessSync).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/changes", syncHandler.GetChanges).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/manifest", syncHandler.GetManifest).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/batch-diff", syncHandler.BatchDiff).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/status", conflictHandler.Status).Methods("GET", "OPTIONS")

	protected.HandleFunc("/conflicts", conflictHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/conflicts/feed", conflictHandler.Feed).Methods("GET", "OPTIONS")
	protected.HandleFunc("/conflicts/history", conflictHandler.History).Methods("GET", "OPTIONS")
	protected.HandleFunc("/conflicts/{id}", conflictHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/conflicts/{id}/resolve", conflictHandler.Resolve).Methods("POST", "OPTIONS")
	protected.HandleFunc("/conflicts/{id}", conflictHandler.Dismiss).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Grocery Sync Server on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"grocery-sync-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Grocery Sync Server API","version":"1.0.0","endpoints":{"/api/v1/auth/register":"POST","/api/v1/auth/login":"POST","/api/v1/lists":"GET (protected)","/api/v1/conflicts":"GET (protected)"}}`))
}
