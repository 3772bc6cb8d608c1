package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"

	"github.com/yourusername/kquiz-api/internal/config"
	"github.com/yourusername/kquiz-api/internal/domain/repository"
	"github.com/yourusername/kquiz-api/internal/handler"
	"github.com/yourusername/kquiz-api/internal/middleware"
	ghRepo "github.com/yourusername/kquiz-api/internal/repository/github"
	memRepo "github.com/yourusername/kquiz-api/internal/repository/memory"
	pgRepo "github.com/yourusername/kquiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/kquiz-api/internal/repository/redis"
	"github.com/yourusername/kquiz-api/internal/service"
	"github.com/yourusername/kquiz-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Redis нужен только для redis-бэкенда сессий и rate limiting
	var redisClient goredis.UniversalClient
	needRedis := cfg.Session.Store == config.SessionStoreRedis || cfg.RateLimit.Enabled
	if needRedis {
		redisClient, err = database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		log.Println("Successfully connected to Redis")
	}

	// Контекст жизненного цикла фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем кеш сессий согласно конфигурации
	var sessionCache repository.SessionRepository
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisCache, err := redisRepo.NewSessionCache(redisClient, cfg.Session.Retention())
		if err != nil {
			log.Printf("Failed to initialize Redis session cache: %v", err)
			os.Exit(1)
		}
		sessionCache = redisCache
		log.Println("Кеш сессий: Redis")
	default:
		memCache := memRepo.NewSessionCache(cfg.Session.Retention())
		sessionCache = memCache
		log.Println("Кеш сессий: in-memory")

		// Фоновая очистка памяти от истекших сессий.
		// Redis-бэкенд чистит себя сам по TTL ключей.
		go func() {
			ticker := time.NewTicker(cfg.Session.SweepInterval())
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					memCache.Sweep(time.Now())
				case <-ctx.Done():
					log.Println("Завершение работы горутины очистки сессий")
					return
				}
			}
		}()
	}

	// Хранилище изображений опционально: без него создаются только
	// текстовые вопросы
	var imageStore repository.ImageStore
	if cfg.GitHub.Enabled() {
		store, err := ghRepo.NewImageStore(ghRepo.Config{
			Owner:  cfg.GitHub.Owner,
			Repo:   cfg.GitHub.Repo,
			Branch: cfg.GitHub.Branch,
			Token:  cfg.GitHub.Token,
		})
		if err != nil {
			log.Printf("Failed to initialize GitHub image store: %v", err)
			os.Exit(1)
		}
		imageStore = store
		log.Printf("Хранилище изображений: github.com/%s/%s@%s", cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch)
	} else {
		log.Println("Хранилище изображений не настроено, вопросы с картинками отключены")
	}

	// Инициализируем репозитории
	questionRepo := pgRepo.NewQuestionRepo(db)

	// Инициализируем сервисы
	questionService := service.NewQuestionService(questionRepo, imageStore)
	quizSetService := service.NewQuizSetService(questionRepo, sessionCache)

	// Инициализируем обработчики
	questionHandler := handler.NewQuestionHandler(questionService)
	quizSetHandler := handler.NewQuizSetHandler(quizSetService)
	playHandler := handler.NewPlayHandler(quizSetService)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting (требует Redis)
	var quizLimit, adminLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled && redisClient != nil {
		rateLimiter := middleware.NewRateLimiter(redisClient)
		quizLimit = rateLimiter.Limit(middleware.QuizRateLimitConfig())
		adminLimit = rateLimiter.LimitByIP(middleware.AdminWriteRateLimitConfig())
	} else {
		passThrough := func(c *gin.Context) { c.Next() }
		quizLimit = passThrough
		adminLimit = passThrough
	}

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Публичное построение и получение наборов
		api.GET("/quiz", quizLimit, quizSetHandler.GetQuiz)

		// Админка вопросов
		questions := api.Group("/questions")
		{
			questions.GET("", questionHandler.ListQuestions)
			questions.GET("/export", questionHandler.ExportQuestions)
			questions.POST("", adminLimit, questionHandler.CreateQuestion)

			questionWithID := questions.Group("/:id")
			questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				questionWithID.GET("", questionHandler.GetQuestion)
				questionWithID.PUT("", adminLimit, questionHandler.UpdateQuestion)
				questionWithID.DELETE("", adminLimit, questionHandler.DeleteQuestion)
			}
		}
	}

	// WebSocket маршрут игрового прохождения
	router.GET("/ws/play", playHandler.Play)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	// Контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
