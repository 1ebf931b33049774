package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avask/buildgrid/internal/job"
)

// statusRouter builds the read-only view of the run: a liveness endpoint
// plus per-job state snapshots.
func (a *App) statusRouter(jobs []*job.Job) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		a.logger.Debug("Health check endpoint hit.", "remote_addr", req.RemoteAddr)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	r.Get("/jobs", func(w http.ResponseWriter, req *http.Request) {
		snapshots := make([]job.Snapshot, len(jobs))
		for i, j := range jobs {
			snapshots[i] = j.Snapshot()
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshots); err != nil {
			a.logger.Error("Failed to encode job snapshots.", "error", err)
		}
	})

	r.Get("/jobs/{jobID}", func(w http.ResponseWriter, req *http.Request) {
		jobID := chi.URLParam(req, "jobID")
		for _, j := range jobs {
			if j.Desc.ID == jobID {
				w.Header().Set("Content-Type", "application/json")
				if err := json.NewEncoder(w).Encode(j.Snapshot()); err != nil {
					a.logger.Error("Failed to encode job snapshot.", "jobID", jobID, "error", err)
				}
				return
			}
		}
		http.NotFound(w, req)
	})

	return r
}

// startStatusServer serves the status router over HTTP for the duration of
// the run.
func (a *App) startStatusServer(port int, jobs []*job.Job) *http.Server {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.statusRouter(jobs),
	}

	go func() {
		a.logger.Info("Status server starting.", "address", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed unexpectedly.", "error", err)
		}
	}()

	return server
}

// stopStatusServer shuts the status server down gracefully.
func (a *App) stopStatusServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error("Status server shutdown failed.", "error", err)
		return
	}
	a.logger.Debug("Status server shut down gracefully.")
}
