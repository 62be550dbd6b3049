package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/taskflow/marketplace-api/internal/config"
	"github.com/taskflow/marketplace-api/internal/constants"
	"github.com/taskflow/marketplace-api/internal/database"
	"github.com/taskflow/marketplace-api/internal/handlers"
	"github.com/taskflow/marketplace-api/internal/middleware"
	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
	"github.com/taskflow/marketplace-api/internal/scheduler"
	"github.com/taskflow/marketplace-api/internal/services"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	db := database.GetDB()

	store, err := redis.NewStore(10, "tcp", cfg.RedisHost+":"+cfg.RedisPort, "", []byte(cfg.SessionSecret))
	if err != nil {
		log.Fatalf("redis session store failed: %v", err)
	}

	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTPHost != "" {
		port, err := strconv.Atoi(cfg.SMTPPort)
		if err != nil {
			log.Fatalf("invalid SMTP port %q", cfg.SMTPPort)
		}
		mailer = services.NewSMTPMailer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
	}

	dispatcher := services.NewAsyncDispatcher(4, 256, 30*time.Second)
	defer dispatcher.Stop()

	userRepo := repository.NewGormUserRepository(db)
	taskRepo := repository.NewGormTaskRepository(db)
	proposalRepo := repository.NewGormProposalRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)

	processor := services.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeWebhookSecret,
		cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)

	authService := services.NewAuthService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	paymentService := services.NewPaymentService(paymentRepo, taskRepo, proposalRepo,
		notificationService, mailer, dispatcher, processor, cfg.Currency, cfg.MinPaymentAmount)
	proposalService := services.NewProposalService(proposalRepo, taskRepo,
		notificationService, mailer, dispatcher)
	taskService := services.NewTaskService(taskRepo, categoryRepo, userRepo,
		paymentService, mailer, dispatcher)
	reminderService := services.NewReminderService(taskRepo, notificationService, mailer,
		constants.ReminderUrgentDays, constants.ReminderUpcomingDays)

	sched, err := scheduler.New(reminderService, cfg.ReminderCron)
	if err != nil {
		log.Fatalf("scheduler setup failed: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	router := gin.Default()
	router.Use(sessions.Sessions(constants.SessionName, store))

	registerRoutes(router, authService, taskService, proposalService, paymentService,
		notificationService, reminderService)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("server listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func registerRoutes(
	router *gin.Engine,
	authService *services.AuthService,
	taskService *services.TaskService,
	proposalService *services.ProposalService,
	paymentService *services.PaymentService,
	notificationService *services.NotificationService,
	reminderService *services.ReminderService,
) {
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reminderHandler := handlers.NewReminderHandler(reminderService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Processor webhooks authenticate by signature, not session.
	router.POST("/webhooks/payments", webhookHandler.HandleProcessorEvent)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
	}

	api := router.Group("/api", middleware.RequireAuth())
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/mine", taskHandler.ListMyTasks)
			tasks.GET("/stats", middleware.RequireRole(models.RoleAdmin), taskHandler.CountTasks)
			tasks.POST("", middleware.RequireRole(models.RoleClient), taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireRole(models.RoleClient), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireRole(models.RoleClient, models.RoleAdmin), taskHandler.DeleteTask)
			tasks.POST("/:id/submit", middleware.RequireRole(models.RoleFreelancer), taskHandler.SubmitWork)
			tasks.POST("/:id/complete", middleware.RequireRole(models.RoleFreelancer), taskHandler.CompleteTask)
			tasks.GET("/:id/proposals", proposalHandler.ListByTask)
			tasks.POST("/:id/checkout", middleware.RequireRole(models.RoleClient), paymentHandler.CreateCheckout)
			tasks.GET("/:id/payment", paymentHandler.GetByTask)
		}

		proposals := api.Group("/proposals")
		{
			proposals.POST("", middleware.RequireRole(models.RoleFreelancer), proposalHandler.Submit)
			proposals.GET("/mine", proposalHandler.ListMine)
			proposals.GET("/stats", middleware.RequireRole(models.RoleAdmin), proposalHandler.Count)
			proposals.GET("/earnings", middleware.RequireRole(models.RoleFreelancer), proposalHandler.Earnings)
			proposals.GET("/:id", proposalHandler.Get)
			proposals.POST("/:id/accept", middleware.RequireRole(models.RoleClient), proposalHandler.Accept)
			proposals.POST("/:id/reject", middleware.RequireRole(models.RoleClient), proposalHandler.Reject)
		}

		payments := api.Group("/payments")
		{
			payments.GET("", middleware.RequireRole(models.RoleAdmin), paymentHandler.ListAll)
			payments.GET("/revenue", middleware.RequireRole(models.RoleAdmin), paymentHandler.TotalRevenue)
			payments.GET("/mine", paymentHandler.ListMine)
			payments.GET("/:id", paymentHandler.Get)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", taskHandler.ListCategories)
			categories.POST("", middleware.RequireRole(models.RoleAdmin), taskHandler.CreateCategory)
		}

		admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/reminders/sweep", reminderHandler.RunSweep)
		}
	}
}
