package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"unimeal-backend-go/internal/api"
	"unimeal-backend-go/internal/config"
	"unimeal-backend-go/internal/core"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/middleware"
	"unimeal-backend-go/internal/prefs"
	"unimeal-backend-go/internal/viewmodel"
)

func main() {
	// .env is for local development; production sets the environment directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	// --- 1. Logger ---
	var zapLogger *zap.Logger
	var err error
	if strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// --- 2. Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	if err := appConfig.ValidateServer(); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid server configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded",
		zap.String("storeDriver", appConfig.StoreDriver),
		zap.String("authMode", appConfig.AuthMode))

	// --- 3. Firebase Admin SDK (Firestore store and/or token verification) ---
	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	var fbClients *db.FirebaseClients
	if appConfig.NeedsFirebase() {
		fbClients, err = db.InitFirebase(initCtx, appConfig, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
		}
		if appConfig.StoreDriver != config.DriverFirestore {
			// The Firestore store owns the client otherwise.
			defer func() { _ = fbClients.Close() }()
		}
	}

	// --- 4. Document store and repositories ---
	store, err := db.OpenStore(initCtx, appConfig, fbClients, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to open document store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("Error closing document store", zap.Error(err))
		}
	}()
	repos := db.NewRepositories(store, zapLogger)

	// --- 5. Sessions ---
	var prefStore prefs.Store = prefs.NewMemoryStore()
	if appConfig.PreferencesPath != "" {
		prefStore = prefs.NewFileStore(appConfig.PreferencesPath)
		zapLogger.Info("Persisting preferences to file", zap.String("path", appConfig.PreferencesPath))
	}
	sessions := core.NewSessionService(viewmodel.Deps{
		Repos:      repos,
		Prefs:      prefStore,
		Thresholds: appConfig.Thresholds,
		Logger:     zapLogger,
	}, appConfig.SessionIdleTimeout, zapLogger)

	// --- 6. Token verification ---
	var verifier middleware.TokenVerifier
	if appConfig.AuthMode == config.AuthModeInsecure {
		zapLogger.Warn("AUTH_MODE=insecure: bearer tokens are trusted as user ids. Never use this outside local development.")
		verifier = middleware.InsecureVerifier{}
	} else {
		verifier = fbClients.Auth
	}

	// --- 7. Gin engine and middleware ---
	if strings.EqualFold(appConfig.GinMode, "release") {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(router, middleware.NewAuthMiddleware(verifier, zapLogger), sessions, zapLogger)

	// --- 8. HTTP server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 9. Graceful shutdown ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	// Close sessions first so open dashboard streams can finish.
	sessions.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
