package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"videogen/internal/domain"
	"videogen/internal/providers/openai"
)

// Verdict is the judge's binary decision with its textual justification.
type Verdict struct {
	IsValid bool   `json:"is_valid" jsonschema_description:"True only if the cached video genuinely answers the requested topic."`
	Reason  string `json:"reason" jsonschema_description:"One sentence explaining the decision."`
}

var verdictSchema = openai.GenerateSchema[Verdict]()

// StructuredCompleter is the slice of the generative-model client the judge
// needs.
type StructuredCompleter interface {
	CompleteJSON(ctx context.Context, schemaName, prompt string, schema any, out any) error
}

// Judge makes the semantic accept/reject decision over a cache candidate.
// Embedding similarity over-matches topically adjacent but substantively
// different requests, so the numeric score is never trusted on its own.
type Judge struct {
	llm StructuredCompleter
}

// NewJudge constructs a judge backed by the given completer.
func NewJudge(llm StructuredCompleter) *Judge {
	return &Judge{llm: llm}
}

// Validate asks whether the candidate is a valid answer for the topic.
func (j *Judge) Validate(ctx context.Context, topic string, candidate domain.CacheCandidate) (Verdict, error) {
	var verdict Verdict
	err := j.llm.CompleteJSON(ctx, "cache_verdict", judgePrompt(topic, candidate), verdictSchema, &verdict)
	if err != nil {
		return Verdict{}, fmt.Errorf("cache: judge: %w", err)
	}
	return verdict, nil
}

func judgePrompt(topic string, candidate domain.CacheCandidate) string {
	var b strings.Builder
	b.WriteString("A user asked for a short explainer video about the following topic:\n\n")
	fmt.Fprintf(&b, "Topic: %s\n\n", topic)
	b.WriteString("A previously generated video with these properties was found in the cache:\n\n")

	keys := make([]string, 0, len(candidate.Metadata))
	for k := range candidate.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, candidate.Metadata[k])
	}
	fmt.Fprintf(&b, "similarity_score: %.4f\n\n", candidate.Score)

	b.WriteString("Decide whether this cached video is a valid answer for the requested topic. ")
	b.WriteString("Treat videos about adjacent but substantively different subjects as invalid. ")
	b.WriteString("Answer with is_valid and a one-sentence reason.")
	return b.String()
}
