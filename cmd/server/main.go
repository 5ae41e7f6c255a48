package main

import (
	"context"
	"log"

	"fieldflow/internal/activity"
	"fieldflow/internal/api/handler"
	"fieldflow/internal/config"
	"fieldflow/internal/core/postgres/repository"
	"fieldflow/internal/domain"
	redisinfra "fieldflow/internal/infrastructure/redis"
	"fieldflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %s", err)
	}
	cfg := config.Load()

	// 2. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := db.AutoMigrate(&domain.Job{}, &domain.Task{}); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	// 3. Set up redis and the event bus
	redisClient, err := redisinfra.NewClient(cfg.RedisAddr, cfg.RedisPoolSize)
	if err != nil {
		log.Fatal("Failed to connect to redis:", err)
	}
	eventBus := redisinfra.NewRedisEventBus(redisClient, cfg.EventChannel)

	// 4. Initialize repositories
	taskRepo := repository.NewTaskRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// 5. Initialize service and handler
	taskSvc := service.NewTaskService(taskRepo, jobRepo, eventBus)
	taskHandler := handler.NewTaskHandler(taskSvc)

	// 6. Start the activity feed consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go activity.NewFeed(eventBus).Start(ctx)

	// 7. Set up routes
	router := gin.Default()

	api := router.Group("/api/v1")
	{
		api.POST("/jobs", taskHandler.CreateJob)
		api.POST("/jobs/:job_id/tasks", taskHandler.CreateTask)
		api.GET("/jobs/:job_id/tasks", taskHandler.ListTasks)
		api.POST("/jobs/:job_id/reorder", taskHandler.BatchReorder)
		api.POST("/jobs/:job_id/drop", taskHandler.Drop)

		api.PATCH("/tasks/:id/reorder", taskHandler.Reorder)
		api.PATCH("/tasks/:id/reparent", taskHandler.Reparent)
		api.PATCH("/tasks/:id/status", taskHandler.ChangeStatus)
		api.DELETE("/tasks/:id", taskHandler.Discard)
		api.POST("/tasks/:id/restore", taskHandler.Restore)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8. Start server
	log.Println("Server starting on", cfg.AppURL)
	if err := router.Run(cfg.AppURL); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
