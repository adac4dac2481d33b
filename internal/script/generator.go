// Package script produces the ordered scene script for a topic using the
// generative-model provider.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"videogen/internal/domain"
	"videogen/internal/providers/openai"
)

var scriptSchema = openai.GenerateSchema[domain.SceneScript]()

// Completer is the slice of the generative-model client the generator needs.
type Completer interface {
	CompleteJSON(ctx context.Context, schemaName, prompt string, schema any, out any) error
}

// Generator turns a topic into a validated SceneScript.
type Generator struct {
	llm Completer
}

// NewGenerator constructs a script generator.
func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

// Generate invokes the provider with a fixed instruction template and
// validates the structured response. A provider failure or a structurally
// invalid reply fails with ErrScriptGeneration.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.SceneScript, error) {
	var script domain.SceneScript
	if err := g.llm.CompleteJSON(ctx, "scene_script", buildPrompt(req), scriptSchema, &script); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrScriptGeneration, err)
	}

	if err := Validate(&script); err != nil {
		// A reply that parses but breaks the script shape is still an invalid
		// structured response, and callers classify it as one.
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrScriptGeneration, openai.ErrInvalidResponse, err)
	}
	return &script, nil
}

// Validate enforces the SceneScript shape invariants: a non-empty ordered
// scene list with narration in every scene.
func Validate(script *domain.SceneScript) error {
	if script == nil || len(script.Scenes) == 0 {
		return errors.New("script has no scenes")
	}
	for i, scene := range script.Scenes {
		if strings.TrimSpace(scene.NarrationText) == "" {
			return fmt.Errorf("scene %d has no narration", i)
		}
		if strings.TrimSpace(scene.Visual.Title) == "" {
			return fmt.Errorf("scene %d has no visual title", i)
		}
		if scene.EstimatedDurationSeconds < 0 {
			return fmt.Errorf("scene %d has negative estimated duration", i)
		}
	}
	return nil
}

func buildPrompt(req domain.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("You are writing the script for a short explainer video.\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	if lang := strings.TrimSpace(req.Options.Language); lang != "" {
		fmt.Fprintf(&b, "Narration language: %s\n", lang)
	}
	if style := strings.TrimSpace(req.Options.Style); style != "" {
		fmt.Fprintf(&b, "Visual style: %s\n", style)
	}
	b.WriteString(`
Break the explanation into 3 to 6 scenes. Each scene needs:
- narration: the exact voiceover text, two to four sentences, spoken plainly
- visual: a headline, an optional short body line, and up to four bullets
- estimated_duration_seconds: the rough spoken length of the narration

Scenes play in the order given. Start from the core idea, build up one step
per scene, and end with a one-scene recap.`)
	return b.String()
}
