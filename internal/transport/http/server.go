package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/ai"
	appsvc "chatrelay/internal/app"
	"chatrelay/internal/bootstrap"
	"chatrelay/internal/cache"
	"chatrelay/internal/platform/rabbitmq"
	"chatrelay/internal/repository"
	"chatrelay/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	gateway := ai.NewOpenRouterClient(ai.ClientConfig{
		BaseURL:       app.Config.OpenRouter.BaseURL,
		APIKey:        app.Config.OpenRouter.APIKey,
		ModelsTimeout: time.Duration(app.Config.OpenRouter.ModelsTimeoutSeconds) * time.Second,
		ChatTimeout:   time.Duration(app.Config.OpenRouter.ChatTimeoutSeconds) * time.Second,
	})
	publisher := rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.UsageEventQueue)

	conversationService := appsvc.NewConversationService(sessionRepo, messageRepo, historyCache)
	catalogService := appsvc.NewCatalogService(gateway)
	chatService := appsvc.NewChatService(conversationService, gateway, publisher, appsvc.ChatDefaults{
		MaxTokens:   app.Config.OpenRouter.MaxTokens,
		Temperature: app.Config.OpenRouter.Temperature,
	})

	healthHandler := handler.NewHealthHandler(app)
	modelsHandler := handler.NewModelsHandler(catalogService)
	sessionsHandler := handler.NewSessionsHandler(conversationService)
	chatHandler := handler.NewChatHandler(chatService)

	router.GET("/", healthHandler.Root)
	router.GET("/healthz", healthHandler.Check)

	models := router.Group("/models")
	models.GET("/", modelsHandler.List)

	sessions := router.Group("/sessions")
	sessions.GET("/", sessionsHandler.List)
	sessions.POST("/", sessionsHandler.Create)
	sessions.GET("/:id", sessionsHandler.Get)
	sessions.PATCH("/:id", sessionsHandler.UpdateTitle)
	sessions.DELETE("/:id", sessionsHandler.Delete)

	chat := router.Group("/chat")
	chat.POST("/", chatHandler.Completion)

	return router
}
