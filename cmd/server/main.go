package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/XBigRoad/banquet-master/auth"
	"github.com/XBigRoad/banquet-master/internal/config"
	"github.com/XBigRoad/banquet-master/internal/db"
	"github.com/XBigRoad/banquet-master/internal/remote"
	"github.com/XBigRoad/banquet-master/internal/storage"
	"github.com/XBigRoad/banquet-master/internal/store"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	resetFlag       = flag.Bool("reset", false, "Restore the factory document and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed")
	}

	st := store.New(storage.NewBlobStore(dbConn))

	if *resetFlag {
		if _, err := st.Load(context.Background()); err != nil {
			log.Fatalf("Failed to load planner document: %v", err)
		}
		if err := st.Reset(context.Background()); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		log.Println("Planner document reset to factory defaults")
		return
	}

	syncer := remote.NewSyncer(cfg.Sync, st)
	if err := openPlanner(context.Background(), st, syncer); err != nil {
		log.Fatalf("Failed to load planner document: %v", err)
	}
	if !cfg.Sync.Enabled() {
		log.Println("Remote sync disabled (REMOTE_URL not set)")
	}

	auth.SetSecret(cfg.App.SessionSecret)
	if cfg.App.SessionSecret == "" && !cfg.App.Dev {
		log.Println("WARNING: SESSION_SECRET not set, using the development secret")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(NewApp(st, syncer, cfg.App.DefaultLang)),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (dev=%v)", cfg.Server.Port, cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	syncer.Stop()
	log.Println("Server stopped gracefully")
}

// openPlanner loads the local document and hooks saves up to the syncer. A
// user still signed in from the previous run resumes syncing right away.
func openPlanner(ctx context.Context, st *store.Store, syncer *remote.Syncer) error {
	loaded, err := st.Load(ctx)
	if err != nil {
		return err
	}
	st.OnSave(syncer.Notify)
	if loaded.CurrentUser != nil {
		log.Printf("Resuming remote sync for %s", loaded.CurrentUser.Username)
		syncer.Start()
	}
	return nil
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
