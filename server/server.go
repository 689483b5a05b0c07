package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jamjar/config"
	"jamjar/core/session"
	"jamjar/core/spotify"
	"jamjar/db"
	"jamjar/logger"
	"jamjar/model"
	"jamjar/repository"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.AppendLog{}); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}

	// Connect to Redis
	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	sessionRepo := repository.NewMySQLSessionRepository(db.DB)
	appendLogRepo := repository.NewGormAppendLogRepository(db.GormDB)

	catalog := spotify.NewClient()
	authenticator := spotify.NewAuthenticator(
		cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.RedirectURL(), catalog)

	registrar := session.NewRegistrar(sessionRepo, catalog)
	appender := session.NewAppender(sessionRepo, catalog, authenticator, appendLogRepo)

	apiHandler := NewAPIHandler(cfg, authenticator, catalog, registrar, appender, sessionRepo, appendLogRepo)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Host authorization flow
	router.HandleFunc("/login", apiHandler.LoginHandler).Methods(http.MethodGet)
	router.HandleFunc("/callback", apiHandler.CallbackHandler).Methods(http.MethodGet)

	// Session registration and contributor endpoints
	router.HandleFunc("/add_account", apiHandler.AddAccountHandler).Methods(http.MethodPost)
	router.HandleFunc("/grab_playlist", apiHandler.GrabPlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/add_track", apiHandler.AddTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/search", apiHandler.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc("/history", apiHandler.HistoryHandler).Methods(http.MethodGet)

	// Contributor front-end
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.PublicDir)))

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ListenAddr)
		log.Printf("Host login at %s/login", cfg.BaseURL)
		log.Println("Contributors add tracks via POST /add_track")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
