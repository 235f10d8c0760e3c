package router

import (
	"fmt"
	"time"

	"sound-service/configs"
	"sound-service/configs/database"
	"sound-service/configs/middleware"
	_ "sound-service/docs"
	adapterdb "sound-service/internal/adapters/database"
	"sound-service/internal/adapters/kafka"
	"sound-service/internal/handler"
	"sound-service/internal/repository"
	"sound-service/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type App struct {
	router    *gin.Engine
	db        *gorm.DB
	publisher kafka.Publisher
}

func NewApp() (*App, error) {
	cfg := configs.Load()

	// Databases
	var db *gorm.DB
	var err error
	if cfg.DatabaseURL != "" {
		db, err = database.NewPostgresConnectionWithURL(cfg.DatabaseURL)
	} else {
		db, err = database.NewPostgresConnection(cfg.PostgresUser, cfg.PostgresPassword,
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	}
	if err != nil {
		return nil, err
	}

	redisClient, err := database.InitRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	minioClient, err := adapterdb.NewMinIOClient(cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		return nil, err
	}

	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.NotificationTopic)
	if err != nil {
		return nil, err
	}

	// Repository
	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	soundRepo := repository.NewSoundRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	billingEvents := repository.NewBillingEventStore(redisClient)

	// Service
	userService := service.NewUserService(userRepo, cfg.JWTSecret, cfg.JWTExpire)
	notificationService := service.NewNotificationService(notificationRepo, publisher)
	connectionService := service.NewConnectionService(connRepo, userRepo, notificationService)
	soundService := service.NewSoundService(soundRepo, userRepo, minioClient)
	billingService := service.NewBillingService(userRepo, billingEvents)

	// Handler
	userHandler := handler.NewUserHandler(userService)
	connectionHandler := handler.NewConnectionHandler(connectionService)
	soundHandler := handler.NewSoundHandler(soundService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	billingHandler := handler.NewBillingHandler(billingService, cfg.BillingWebhookSecret)

	// Setup router
	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] | %s | %d | %s | %s | %s | %s\n",
			param.TimeStamp.Format("2006-01-02 15:04:05"),
			param.ClientIP,
			param.StatusCode,
			param.Method,
			param.Path,
			param.ErrorMessage,
			param.Latency,
		)
	}))

	rateLimit := middleware.NewRateLimitMiddleware(redisClient)

	// Register API routes
	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "UP",
			})
		})

		api.Use(rateLimit.RateLimitIP(300, time.Minute))

		userHandler.RegisterRoutes(api)
		connectionHandler.RegisterRoutes(api)
		soundHandler.RegisterRoutes(api)
		notificationHandler.RegisterRoutes(api)
		billingHandler.RegisterRoutes(api)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &App{
		router:    router,
		db:        db,
		publisher: publisher,
	}, nil
}

func (a *App) Engine() *gin.Engine {
	return a.router
}

func (a *App) Run() error {
	cfg := configs.Load()
	return a.router.Run(":" + cfg.Port)
}

func (a *App) Close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
}
