// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/coreframe-ai/coreframe-server/internal/config"
	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/handlers"
	"github.com/coreframe-ai/coreframe-server/internal/middleware"
	"github.com/coreframe-ai/coreframe-server/internal/ratelimit"
	chatrepo "github.com/coreframe-ai/coreframe-server/internal/repository/chat"
	memoryrepo "github.com/coreframe-ai/coreframe-server/internal/repository/memory"
	messagerepo "github.com/coreframe-ai/coreframe-server/internal/repository/message"
	projectrepo "github.com/coreframe-ai/coreframe-server/internal/repository/project"
	userrepo "github.com/coreframe-ai/coreframe-server/internal/repository/user"
	"github.com/coreframe-ai/coreframe-server/internal/services"
	"github.com/coreframe-ai/coreframe-server/internal/services/ai"
	"github.com/coreframe-ai/coreframe-server/internal/services/chatsvc"
	"github.com/coreframe-ai/coreframe-server/internal/services/tools"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
	"github.com/coreframe-ai/coreframe-server/internal/services/usage"
	"github.com/coreframe-ai/coreframe-server/internal/services/user_services"
)

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("coreframe")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Chat{},
		&domain.Message{},
		&domain.Project{},
		&domain.Memory{},
	); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)
	projectRepo := projectrepo.NewProjectRepository(db)
	memoryRepo := memoryrepo.NewMemoryRepository(db)

	// --- Services ---
	usageConfig := usage.DefaultConfig()
	if err := usageConfig.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid usage config: %v", err)
	}
	usageGate := usage.NewService(usageConfig, userRepo, logger)

	registry := tools.NewRegistry(memoryRepo, projectRepo, usageGate, logger)

	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.AIAPIKey
	aiConfig.BaseURL = cfg.AIBaseURL
	aiConfig.MaxSteps = cfg.MaxToolSteps
	if err := aiConfig.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid AI config: %v", err)
	}
	engine := ai.NewOpenAIProvider(aiConfig, registry, logger)

	chatConfig := chatsvc.DefaultConfig()
	chatConfig.DefaultModel = cfg.DefaultModel
	if err := chatConfig.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid chat config: %v", err)
	}
	controller := chatsvc.NewController(chatConfig, chatRepo, messageRepo, usageGate, engine, logger)

	decoder := transcript.NewDecoder(logger)
	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	streamHandler := handlers.NewStreamHandler(controller)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, decoder)
	projectHandler := handlers.NewProjectHandler(projectRepo)
	memoryHandler := handlers.NewMemoryHandler(memoryRepo, projectRepo, usageGate)
	exportHandler := handlers.NewExportHandler(chatRepo, messageRepo, decoder)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(authService)
	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()

	r.Use(corsMiddleware(cfg.AllowedOrigin))
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.RequestLogging)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter, "auth"))
	authRoutes.Use(middleware.AuthSuccessMiddleware(authLimiter, "auth"))
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", authHandler.Login).Methods("POST")
	authRoutes.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// The streaming endpoint authenticates from its request body, so it
	// stays outside the JWT subrouter.
	r.HandleFunc("/api/chat", streamHandler.HandleChat).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/chats", chatHandler.GetUserChats).Methods("GET")
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats/{id}", chatHandler.DeleteChat).Methods("DELETE")
	api.HandleFunc("/chats/{id}/messages", chatHandler.GetChatMessages).Methods("GET")
	api.HandleFunc("/chats/{id}/messages", chatHandler.AppendMessage).Methods("POST")
	api.HandleFunc("/chats/{id}/messages/bulk", chatHandler.BulkAppendMessages).Methods("POST")
	api.HandleFunc("/chats/{id}/messages", chatHandler.ClearMessages).Methods("DELETE")
	api.HandleFunc("/chats/{id}/export", exportHandler.ExportChat).Methods("GET")

	api.HandleFunc("/projects", projectHandler.GetUserProjects).Methods("GET")
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PUT")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")
	api.HandleFunc("/projects/{id}/memories", memoryHandler.GetProjectMemories).Methods("GET")
	api.HandleFunc("/projects/{id}/memories", memoryHandler.CreateProjectMemory).Methods("POST")

	api.HandleFunc("/memories", memoryHandler.GetGeneralMemories).Methods("GET")
	api.HandleFunc("/memories", memoryHandler.CreateGeneralMemory).Methods("POST")
	api.HandleFunc("/memories/{id}", memoryHandler.UpdateMemory).Methods("PUT")
	api.HandleFunc("/memories/{id}", memoryHandler.DeleteMemory).Methods("DELETE")

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("CoreFrame server starting on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
