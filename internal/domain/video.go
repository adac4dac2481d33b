package domain

// RenderOptions carries per-request hints that shape the generated video.
type RenderOptions struct {
	Language string
	Style    string
	Voice    string
}

// GenerationRequest is the immutable input for one generation job. It is owned
// by the orchestrator for the lifetime of the job.
type GenerationRequest struct {
	JobID   string
	Topic   string
	Options RenderOptions
}

// VisualSpec is the structured content block a scene renders on screen.
type VisualSpec struct {
	Title   string   `json:"title" jsonschema_description:"Short headline shown at the top of the scene."`
	Body    string   `json:"body" jsonschema_description:"One or two explanatory sentences shown below the headline."`
	Bullets []string `json:"bullets,omitempty" jsonschema_description:"Optional key points, at most four, each under ten words."`
	Style   string   `json:"style,omitempty" jsonschema_description:"Optional visual style hint such as 'dark' or 'light'."`
}

// Scene is one narrated beat of the target video.
type Scene struct {
	NarrationText            string     `json:"narration" jsonschema_description:"The exact voiceover text for this scene, two to four sentences."`
	Visual                   VisualSpec `json:"visual" jsonschema_description:"What is shown on screen while the narration plays."`
	EstimatedDurationSeconds float64    `json:"estimated_duration_seconds" jsonschema_description:"Rough spoken length of the narration in seconds."`
}

// SceneScript is the ordered scene sequence for one video. The order is the
// required playback order and is never reordered downstream.
type SceneScript struct {
	Topic  string  `json:"topic" jsonschema_description:"The topic this script explains."`
	Scenes []Scene `json:"scenes" jsonschema_description:"Ordered list of scenes, three to six for a short explainer."`
}

// RenderedScene holds the per-scene artifacts produced by the visual renderer
// and the narration synthesizer. DurationSeconds is authoritative and always
// taken from the audio artifact; the still image has no intrinsic duration.
type RenderedScene struct {
	Index           int
	ImagePath       string
	AudioPath       string
	DurationSeconds float64
}

// ArtifactRef identifies a final deliverable in the artifact store.
type ArtifactRef struct {
	Bucket string
	Key    string
	URL    string
}

// CacheCandidate is a read-only projection of a similarity-index match. It is
// discarded after validation.
type CacheCandidate struct {
	ID       string
	Score    float64
	Artifact ArtifactRef
	Metadata map[string]string
}

// CacheRecord is written once per successfully completed job and never
// mutated afterwards.
type CacheRecord struct {
	ID        string
	Topic     string
	Embedding []float32
	Artifact  ArtifactRef
	Metadata  map[string]string
}

// StreamingPackage is the segmented streaming deliverable derived from the
// final video: a playlist plus its ordered segment files.
type StreamingPackage struct {
	PlaylistPath string
	SegmentPaths []string
}
