package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service": "leadscout",
				"endpoints": map[string]string{
					"/api/search":     "GET/POST - search via the business directory",
					"/api/search-web": "GET/POST - search via general web search (faster)",
					"/api/status":     "GET - service status",
				},
			})
		})

		r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":  "online",
				"service": "leadscout",
			})
		})

		searchHandler := func(mode model.SearchMode) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				handleSearch(w, r, e.Service, mode)
			}
		}
		r.Get("/api/search", searchHandler(model.ModeDirectory))
		r.Post("/api/search", searchHandler(model.ModeDirectory))
		r.Get("/api/search-web", searchHandler(model.ModeWebSearch))
		r.Post("/api/search-web", searchHandler(model.ModeWebSearch))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// handleSearch reads the search term from the JSON body (POST) or query
// string (GET), validates it, and runs the pipeline synchronously.
func handleSearch(w http.ResponseWriter, r *http.Request, svc *pipeline.Service, mode model.SearchMode) {
	var term string
	if r.Method == http.MethodPost {
		var req struct {
			SearchTerm string `json:"search_term"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": "invalid request body",
			})
			return
		}
		term = req.SearchTerm
	} else {
		term = r.URL.Query().Get("search_term")
	}

	term = strings.TrimSpace(term)
	if term == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "search_term is required",
		})
		return
	}

	resp, err := svc.Run(r.Context(), term, mode)
	if err != nil {
		zap.L().Error("search request failed",
			zap.String("term", term),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "internal error",
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
