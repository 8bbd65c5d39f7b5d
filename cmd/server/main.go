package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vitaltrack/vitaltrack/internal/api"
	"github.com/vitaltrack/vitaltrack/internal/db"
	"github.com/vitaltrack/vitaltrack/internal/middleware"
	"github.com/vitaltrack/vitaltrack/internal/services"
	"github.com/vitaltrack/vitaltrack/internal/utils"
)

func main() {
	addr := utils.SafeEnv("VITALTRACK_ADDR", ":8080")
	dbPath := utils.SafeEnv("VITALTRACK_SQLITE_PATH", "vitaltrack.db")
	commit := os.Getenv("VITALTRACK_COMMIT")
	buildTime := os.Getenv("VITALTRACK_BUILD_TIME")

	sqlDB, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		log.Fatalf("open sqlite %s: %v", dbPath, err)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(sqlDB, os.Getenv("VITALTRACK_MIGRATIONS_DIR")); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	store, err := db.NewSQLiteStore(sqlDB)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	router := api.NewRouter(
		services.NewAuthService(store, middleware.SignToken),
		services.NewMissionService(store, services.DefaultCatalog()),
		services.NewChallengeService(store),
		services.NewDashboardService(store),
	)

	mux := http.NewServeMux()
	router.Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "VitalTrack API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Static frontend when bundled into the image.
	if staticDir := os.Getenv("VITALTRACK_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.CORS(
		middleware.SecureHeaders(
			middleware.NoStore(
				middleware.LocaleMiddleware(
					middleware.WithAuth(mux)))))

	log.Printf("VitalTrack server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
