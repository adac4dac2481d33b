package handlers

import (
	"encoding/json"
	"net/http"

	"videogen/internal/domain"
)

type videoGenerateRequest struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Style    string `json:"style"`
	Voice    string `json:"voice"`
}

type videoGenerateResponse struct {
	JobID  string `json:"job_id"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Cached bool   `json:"cached"`
}

// GenerateVideo runs the pipeline synchronously and responds with the
// playable stream URL. The request blocks until the video exists; clients
// that need progress should poll the stream URL instead of this endpoint.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Topic == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic is required")
		return
	}

	res, err := a.Gen.Generate(r.Context(), req.Topic, domain.RenderOptions{
		Language: req.Language,
		Style:    req.Style,
		Voice:    req.Voice,
	})
	if err != nil {
		a.Log.Error().Err(err).Str("topic", req.Topic).Msg("http: generation failed")
		switch {
		case r.Context().Err() != nil:
			// Client went away; there is nobody left to answer.
			return
		case domain.ClassOf(err) == domain.ClassValidation:
			a.error(w, http.StatusUnprocessableEntity, "invalid_content", "the topic could not be turned into a valid script")
		default:
			a.error(w, http.StatusBadGateway, "generation_failed", "video generation failed")
		}
		return
	}

	a.json(w, http.StatusOK, videoGenerateResponse{
		JobID:  res.JobID,
		URL:    res.Artifact.URL,
		Bucket: res.Artifact.Bucket,
		Key:    res.Artifact.Key,
		Cached: res.Cached,
	})
}
