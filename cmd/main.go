package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/trix-studio/trix/pkg/inpainting"
	"github.com/trix-studio/trix/pkg/jobs"
	"github.com/trix-studio/trix/pkg/logging"
	"github.com/trix-studio/trix/pkg/storage"
	"github.com/trix-studio/trix/pkg/tools"
	"github.com/trix-studio/trix/pkg/trix"
	"github.com/trix-studio/trix/pkg/trix/database"
	"github.com/trix-studio/trix/pkg/trix/handler"
	"github.com/trix-studio/trix/pkg/trix/helpers/httpclient"
	"github.com/trix-studio/trix/pkg/trix/repositories"
	"github.com/trix-studio/trix/pkg/trix/services"
)

func main() {
	_ = godotenv.Load()

	_, flush, err := logging.Init()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		zap.L().Fatal("JWT_SECRET is not set")
	}
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "1.0.0"
	}

	db, err := database.ConnectFromEnv()
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}
	store, err := storage.FromEnv(ctx)
	if err != nil {
		zap.L().Fatal("storage init failed", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	designRepo := repositories.NewDesignRepository(db)
	socialRepo := repositories.NewSocialRepository(db)

	authService := services.NewAuthService(userRepo, []byte(secret), 0)
	profileService := services.NewProfileService(userRepo, designRepo, store)
	designService := services.NewDesignService(designRepo, store)
	socialService := services.NewSocialService(socialRepo, designRepo, userRepo)
	contactService := services.NewContactService(socialRepo)
	ai := inpainting.NewClient(inpainting.ConfigFromEnv(), httpclient.InferenceClient)
	if !ai.Configured() {
		zap.L().Warn("HUGGINGFACE_API_TOKEN not set; inpainting disabled")
	}
	inpaintingService := services.NewInpaintingService(ai, store)

	jobs.ScheduleDailyRecount(ctx, socialService)

	router := trix.NewRouter(version, []byte(secret), trix.Controllers{
		Auth:       handler.NewAuthController(authService, profileService),
		Designs:    handler.NewDesignsAPIController(designService),
		Profiles:   handler.NewProfilesAPIController(profileService),
		Social:     handler.NewSocialAPIController(socialService, contactService),
		Inpainting: handler.NewInpaintingAPIController(inpaintingService),
	})
	if local, ok := store.(*storage.LocalStore); ok {
		if u, err := url.Parse(local.BaseURL()); err == nil && u.Host == "" {
			router.Engine().Static(strings.TrimRight(u.Path, "/"), local.Root())
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		zap.L().Info("server is running", zap.String("port", port), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("shutdown failed", zap.Error(err))
	}
	if err := tools.Wait(shutdownCtx); err != nil {
		zap.L().Warn("background tasks still running", zap.Error(err))
	}
}
