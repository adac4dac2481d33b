package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"videogen/internal/domain"
)

type fakeCompleter struct {
	complete func(ctx context.Context, schemaName, prompt string, schema any, out any) error
}

func (f fakeCompleter) CompleteJSON(ctx context.Context, schemaName, prompt string, schema any, out any) error {
	if f.complete != nil {
		return f.complete(ctx, schemaName, prompt, schema, out)
	}
	return errors.New("complete not implemented")
}

func TestJudgeValidateAccepts(t *testing.T) {
	var seenPrompt string
	judge := NewJudge(fakeCompleter{complete: func(ctx context.Context, name, prompt string, schema any, out any) error {
		seenPrompt = prompt
		return json.Unmarshal([]byte(`{"is_valid":true,"reason":"same topic, same depth"}`), out)
	}})

	candidate := domain.CacheCandidate{
		Score:    0.93,
		Metadata: map[string]string{"topic": "Two's Complement Arithmetic", "scenes": "4"},
	}
	verdict, err := judge.Validate(context.Background(), "two's complement arithmetic", candidate)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !verdict.IsValid {
		t.Fatal("verdict should be valid")
	}
	if verdict.Reason == "" {
		t.Fatal("reason must be populated for the audit log")
	}
	for _, want := range []string{"two's complement arithmetic", "Two's Complement Arithmetic", "scenes: 4", "0.9300"} {
		if !strings.Contains(seenPrompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, seenPrompt)
		}
	}
}

func TestJudgeValidateRejects(t *testing.T) {
	judge := NewJudge(fakeCompleter{complete: func(ctx context.Context, name, prompt string, schema any, out any) error {
		return json.Unmarshal([]byte(`{"is_valid":false,"reason":"video covers floating point, not two's complement"}`), out)
	}})

	verdict, err := judge.Validate(context.Background(), "two's complement arithmetic", domain.CacheCandidate{})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if verdict.IsValid {
		t.Fatal("verdict should be invalid")
	}
}

func TestJudgeValidatePropagatesProviderError(t *testing.T) {
	boom := errors.New("provider down")
	judge := NewJudge(fakeCompleter{complete: func(ctx context.Context, name, prompt string, schema any, out any) error {
		return boom
	}})

	if _, err := judge.Validate(context.Background(), "t", domain.CacheCandidate{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
}
