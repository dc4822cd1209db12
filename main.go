// File: medibook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	cronJobs "medibook/cron"
	"medibook/database"
	reservationRepo "medibook/database/repository/reservation"
	scheduleRepo "medibook/database/repository/schedule"
	"medibook/handlers"
	"medibook/models"
	"medibook/routes"
	"medibook/services/booking"
	"medibook/services/notification"
	"medibook/services/otp"
	"medibook/services/tasks"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitOTPCache()

	blocks, err := models.ParseWorkBlocks(config.AppConfig.WorkdayBlocks)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid WORKDAY_BLOCKS: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	schedules := scheduleRepo.NewMongoScheduleRepo(config.AppConfig.DatabaseName)
	reservations := reservationRepo.NewMongoReservationRepo(config.AppConfig.DatabaseName)

	// OTP delivery: SMS in production, log output when Twilio is not configured.
	var notifier notification.Service
	if config.AppConfig.TwilioAccountSID != "" {
		notifier = notification.NewSMSService()
	} else {
		logger.Sugar().Warn("main: Twilio not configured, codes go to the log")
		notifier = notification.NewLogService()
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()

	// services.
	challengeSvc := otp.NewChallengeService(
		otp.NewRedisChallengeStore(utils.GetOTPCacheClient()),
		tasks.NewQueueDispatcher(asynqClient),
		config.AppConfig.OTPCodeLength,
		time.Duration(config.AppConfig.OTPTTLSeconds)*time.Second,
		time.Duration(config.AppConfig.OTPResendCooldown)*time.Second,
		config.AppConfig.OTPMaxAttempts,
	)

	bookingSvc := booking.NewBookingService(
		schedules,
		reservations,
		challengeSvc,
		blocks,
		config.AppConfig.SlotMinutes,
	)

	// Background: delivery worker and the expiry sweeper.
	cronJobs.InitOTPWorker(notifier)
	sweeper := cronJobs.InitExpirySweeper(bookingSvc)
	defer sweeper.Stop()

	bookingHandler := handlers.NewBookingHandler(bookingSvc)
	routes.RegisterRoutes(router, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
