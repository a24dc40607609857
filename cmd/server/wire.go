//go:build wireinject
// +build wireinject

// File: cmd/server/wire.go
package main

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/coreframe-ai/coreframe-server/internal/config"
	"github.com/coreframe-ai/coreframe-server/internal/handlers"
	"github.com/coreframe-ai/coreframe-server/internal/repository/chat"
	"github.com/coreframe-ai/coreframe-server/internal/repository/memory"
	"github.com/coreframe-ai/coreframe-server/internal/repository/message"
	"github.com/coreframe-ai/coreframe-server/internal/repository/project"
	"github.com/coreframe-ai/coreframe-server/internal/repository/user"
	"github.com/coreframe-ai/coreframe-server/internal/services"
	"github.com/coreframe-ai/coreframe-server/internal/services/ai"
	"github.com/coreframe-ai/coreframe-server/internal/services/chatsvc"
	"github.com/coreframe-ai/coreframe-server/internal/services/tools"
	"github.com/coreframe-ai/coreframe-server/internal/services/transcript"
	"github.com/coreframe-ai/coreframe-server/internal/services/usage"
	"github.com/coreframe-ai/coreframe-server/internal/services/user_services"
)

// Application aggregates all services and handlers
type Application struct {
	Config         *config.Config
	Logger         services.Logger
	AuthHandler    *handlers.AuthHandler
	StreamHandler  *handlers.StreamHandler
	ChatHandler    *handlers.ChatHandler
	ProjectHandler *handlers.ProjectHandler
	MemoryHandler  *handlers.MemoryHandler
	ExportHandler  *handlers.ExportHandler
	Controller     *chatsvc.Controller
	UsageGate      *usage.Service
	UserRepo       user.UserRepository
}

// JWTSecret avoids string ambiguity in the provider graph.
type JWTSecret string

func ProvideLogger() services.Logger {
	return services.NewLogger("coreframe")
}

func ProvideJWTSecret(cfg *config.Config) JWTSecret {
	return JWTSecret(cfg.JWTSecretKey)
}

func ProvideUsageConfig() *usage.Config {
	return usage.DefaultConfig()
}

func ProvideAIConfig(cfg *config.Config) *ai.Config {
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.AIAPIKey
	aiConfig.BaseURL = cfg.AIBaseURL
	aiConfig.MaxSteps = cfg.MaxToolSteps
	return aiConfig
}

func ProvideChatConfig(cfg *config.Config) *chatsvc.Config {
	chatConfig := chatsvc.DefaultConfig()
	chatConfig.DefaultModel = cfg.DefaultModel
	return chatConfig
}

func ProvideUsageLogger(logger services.Logger) usage.Logger         { return logger }
func ProvideToolsLogger(logger services.Logger) tools.Logger         { return logger }
func ProvideAILogger(logger services.Logger) ai.Logger               { return logger }
func ProvideChatLogger(logger services.Logger) chatsvc.Logger        { return logger }
func ProvideTranscriptLogger(logger services.Logger) transcript.Logger { return logger }
func ProvideUserServicesLogger(logger services.Logger) user_services.Logger { return logger }

func ProvideEngine(aiConfig *ai.Config, registry *tools.Registry, logger ai.Logger) ai.CompletionEngine {
	return ai.NewOpenAIProvider(aiConfig, registry, logger)
}

func ProvideUsageGate(svc *usage.Service) chatsvc.UsageGate { return svc }

func NewAuthServiceWrapped(repo user.UserRepository, jwtSecret JWTSecret, logger user_services.Logger) *user_services.AuthService {
	return user_services.NewAuthService(repo, string(jwtSecret), logger)
}

func InitializeApplication(cfg *config.Config, db *gorm.DB) (*Application, error) {
	wire.Build(
		ProvideLogger,
		ProvideJWTSecret,
		ProvideUsageConfig,
		ProvideAIConfig,
		ProvideChatConfig,
		ProvideUsageLogger,
		ProvideToolsLogger,
		ProvideAILogger,
		ProvideChatLogger,
		ProvideTranscriptLogger,
		ProvideUserServicesLogger,
		ProvideEngine,
		ProvideUsageGate,

		// Repositories
		user.NewGormUserRepository,
		chat.NewChatRepository,
		message.NewMessageRepository,
		project.NewProjectRepository,
		memory.NewMemoryRepository,

		// Core services
		usage.NewService,
		tools.NewRegistry,
		transcript.NewDecoder,
		chatsvc.NewController,
		NewAuthServiceWrapped,

		// Handlers
		handlers.NewAuthHandler,
		handlers.NewStreamHandler,
		handlers.NewChatHandler,
		handlers.NewProjectHandler,
		handlers.NewMemoryHandler,
		handlers.NewExportHandler,

		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
