package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relist-ai/comps-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP validation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		if s != nil {
			defer s.Close()
			if err := s.Migrate(ctx); err != nil {
				return err
			}
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeHTTPJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/validate", func(w http.ResponseWriter, req *http.Request) {
			var input validationInput
			if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
				writeHTTPError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			out, err := runValidation(req.Context(), &input)
			if err != nil {
				zap.L().Error("validation failed", zap.Error(err))
				writeHTTPError(w, http.StatusInternalServerError, "validation failed")
				return
			}

			if s != nil {
				if _, err := s.CreateRun(req.Context(), input.Item, out.Comps, &out.Check); err != nil {
					zap.L().Warn("persist run failed", zap.Error(err))
				}
			}

			writeHTTPJSON(w, http.StatusOK, out)
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			if s == nil {
				writeHTTPError(w, http.StatusNotImplemented, "no store configured")
				return
			}
			runs, err := s.ListRuns(req.Context(), runFilterFromQuery(req))
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				writeHTTPError(w, http.StatusInternalServerError, "list runs failed")
				return
			}
			writeHTTPJSON(w, http.StatusOK, runs)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			if s == nil {
				writeHTTPError(w, http.StatusNotImplemented, "no store configured")
				return
			}
			run, err := s.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				if errors.Is(err, store.ErrRunNotFound) {
					writeHTTPError(w, http.StatusNotFound, "run not found")
					return
				}
				zap.L().Error("get run failed", zap.Error(err))
				writeHTTPError(w, http.StatusInternalServerError, "get run failed")
				return
			}
			writeHTTPJSON(w, http.StatusOK, run)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// runFilterFromQuery maps ?reidentify=, ?limit=, ?offset= onto a RunFilter.
func runFilterFromQuery(req *http.Request) store.RunFilter {
	var filter store.RunFilter
	q := req.URL.Query()
	if v := q.Get("reidentify"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.ShouldReidentify = &b
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}
	return filter
}

func writeHTTPJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeHTTPError(w http.ResponseWriter, status int, msg string) {
	writeHTTPJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
