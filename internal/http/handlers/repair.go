package handlers

import (
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// maxRepairBytes bounds the corrected artifact a caller may hand over.
const maxRepairBytes = 512 << 20

// RepairArtifact accepts a corrected copy of a previously stored object and
// schedules a background re-save. The response never depends on the upload's
// outcome; a malformed artifact in the store must not be able to fail the
// system that noticed it.
func (a *App) RepairArtifact(w http.ResponseWriter, r *http.Request) {
	if a.Repair == nil {
		a.error(w, http.StatusNotFound, "not_found", "repair channel disabled")
		return
	}
	key := chi.URLParam(r, "*")
	if key == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "artifact key is required")
		return
	}

	tmp, err := os.CreateTemp("", "repair-*")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "could not stage artifact")
		return
	}
	_, copyErr := io.Copy(tmp, http.MaxBytesReader(w, r.Body, maxRepairBytes))
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		a.error(w, http.StatusBadRequest, "bad_request", "could not read artifact body")
		return
	}

	a.Repair.ResaveUpload(a.Bucket, key, tmp.Name(), r.Header.Get("Content-Type"))
	a.json(w, http.StatusAccepted, map[string]string{"status": "scheduled", "key": key})
}
