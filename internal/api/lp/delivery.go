// Package lp exposes HTTP run-status and CSV-result retrieval endpoints,
// modeled on the teacher's long-poll handler shape (chi URL params,
// context-aware wait for a value not yet available) even though a run's
// completion here is driven by the simulation's own clock rather than an
// external event stream.
package lp

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/othellosim/desim/internal/api"
)

// pollTimeout bounds how long GET /runs/{id} will wait for a run still in
// progress before returning 202 Accepted instead of the final status,
// mirroring the teacher's 30-second long-poll timeout.
const pollTimeout = 30 * time.Second

// streamFiles maps the six result-stream names (spec §6) to their on-disk
// filename under a run's output directory.
var streamFiles = map[string]string{
	"avg_q_samples":       "avg_q_samples.csv",
	"all_q_samples":       "all_q_samples.csv",
	"expected_avg_qsizes": "expected_avg_qsizes.csv",
	"cpu_utilization":     "cpu_utilization.csv",
	"mem_access_counts":   "mem_access_counts.csv",
	"completion_times":    "completion_times.csv",
}

// Handler serves run-status and result-stream retrieval.
type Handler struct {
	store  *api.Store
	outDir string
}

// NewHandler binds a Handler to the shared run store and the CSV output
// root ResultWriter writes under.
func NewHandler(store *api.Store, outDir string) *Handler {
	return &Handler{store: store, outDir: outDir}
}

// Routes mounts this handler's endpoints onto r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/runs/{id}", h.status)
	r.Get("/runs/{id}/results/{stream}", h.result)
}

// status handles GET /runs/{id}: waits up to pollTimeout for a running run
// to finish, then reports its status and completion time once known.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok := h.store.Get(id)
	if !ok {
		http.Error(w, "unknown run id", http.StatusNotFound)
		return
	}

	deadline := time.NewTimer(pollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for rec.Status == api.StatusRunning {
		select {
		case <-r.Context().Done():
			return
		case <-deadline.C:
			w.WriteHeader(http.StatusAccepted)
			return
		case <-ticker.C:
			rec, _ = h.store.Get(id)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	switch rec.Status {
	case api.StatusComplete:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"` + rec.ID + `","status":"` + rec.Status.String() +
			`","completion_time":` + strconv.FormatInt(int64(rec.Result.CompletionTime), 10) + `}`))
	case api.StatusFailed:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"id":"` + rec.ID + `","status":"` + rec.Status.String() +
			`","error":"` + rec.Err.Error() + `"}`))
	}
}

// result handles GET /runs/{id}/results/{stream}: streams one of the six
// CSV result files for a completed run straight off disk.
func (h *Handler) result(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stream := chi.URLParam(r, "stream")

	fname, ok := streamFiles[stream]
	if !ok {
		http.Error(w, "unknown result stream", http.StatusBadRequest)
		return
	}

	rec, ok := h.store.Get(id)
	if !ok {
		http.Error(w, "unknown run id", http.StatusNotFound)
		return
	}
	if rec.Status != api.StatusComplete {
		http.Error(w, "run not complete", http.StatusConflict)
		return
	}

	path := filepath.Join(h.outDir, rec.ID, fname)
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "result file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv")
	_, _ = io.Copy(w, f)
}
