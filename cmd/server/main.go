package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filevault/backend/internal/catalog"
	"github.com/filevault/backend/internal/config"
	"github.com/filevault/backend/internal/database"
	"github.com/filevault/backend/internal/handlers"
	"github.com/filevault/backend/internal/middleware"
	"github.com/filevault/backend/internal/storage"
	"github.com/filevault/backend/internal/store"
	"github.com/filevault/backend/pkg/logger"
	"github.com/filevault/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	recordStore := store.New(db)
	catalogService := catalog.NewService(recordStore)

	authHandler := handlers.NewAuthHandler(recordStore, catalogService, cfg.Reset.CodeTTL)
	filesHandler := handlers.NewFilesHandler(catalogService, storageClient)
	foldersHandler := handlers.NewFoldersHandler(catalogService, storageClient)
	statsHandler := handlers.NewStatsHandler(catalogService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", authHandler.Signup)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/send-code", authHandler.SendCode)
	authRoutes.Post("/verify-code", authHandler.VerifyCode)
	authRoutes.Post("/reset-password", authHandler.ResetPassword)
	authRoutes.Patch("/set-pin", authMiddleware.RequireAuth, authHandler.SetPin)

	fileRoutes := api.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/", filesHandler.Upload)
	fileRoutes.Get("/", filesHandler.List)
	fileRoutes.Get("/:id/download", filesHandler.Download)
	fileRoutes.Get("/:id", filesHandler.Get)
	fileRoutes.Patch("/:id/favorite", filesHandler.ToggleFavorite)
	fileRoutes.Patch("/:id/hidden", filesHandler.ToggleHidden)
	fileRoutes.Patch("/:id/move", filesHandler.Move)
	fileRoutes.Patch("/:id", filesHandler.Update)
	fileRoutes.Delete("/:id", filesHandler.Delete)

	folderRoutes := api.Group("/folders", authMiddleware.RequireAuth)
	folderRoutes.Post("/", foldersHandler.Create)
	folderRoutes.Get("/:id/children", foldersHandler.Children)
	folderRoutes.Patch("/:id/favorite", foldersHandler.ToggleFavorite)
	folderRoutes.Patch("/:id/hidden", foldersHandler.ToggleHidden)
	folderRoutes.Patch("/:id", foldersHandler.Update)
	folderRoutes.Delete("/:id", foldersHandler.Delete)

	api.Get("/dashboard/overview", authMiddleware.RequireAuth, statsHandler.Overview)
	api.Get("/favorites", authMiddleware.RequireAuth, statsHandler.Favorites)
	api.Get("/calendar/files", authMiddleware.RequireAuth, statsHandler.CalendarFiles)
	api.Get("/calendar/:year/:month", authMiddleware.RequireAuth, statsHandler.CalendarMonth)
	api.Get("/stats/usage", authMiddleware.RequireAuth, statsHandler.Usage)
	api.Get("/stats/type-breakdown", authMiddleware.RequireAuth, statsHandler.TypeBreakdown)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
