package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/paperdigest/internal/llm"
)

func TestExtract_AllAspects(t *testing.T) {
	var prompts []string
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if req.System != SystemPrompt {
			t.Errorf("unexpected system prompt %q", req.System)
		}
		if req.MaxTokens != DefaultMaxTokens || req.Temperature != 0.7 || req.TopP != 0.9 {
			t.Errorf("unexpected parameters %+v", req)
		}
		prompts = append(prompts, req.User)
		switch {
		case strings.Contains(req.User, "main contributions"):
			return " A new method. ", nil
		case strings.Contains(req.User, "the methodology"):
			return "Controlled trials.", nil
		default:
			return "It works.", nil
		}
	})

	res := NewExtractor(client, Options{}, nil).Extract(context.Background(), "paper text")

	want := Result{Contributions: "A new method.", Methodology: "Controlled trials.", Results: "It works."}
	if res != want {
		t.Errorf("got %+v, want %+v", res, want)
	}
	if len(prompts) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(prompts))
	}
	for _, p := range prompts {
		if !strings.Contains(p, "\n\npaper text\n\n") {
			t.Errorf("prompt does not carry the full text: %q", p)
		}
	}
}

func TestExtract_FailureIsolated(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.User, "the methodology") {
			return "", errors.New("quota exceeded")
		}
		return "ok", nil
	})

	res := NewExtractor(client, Options{}, nil).Extract(context.Background(), "text")
	if res.Contributions != "ok" || res.Results != "ok" {
		t.Errorf("other aspects should succeed: %+v", res)
	}
	if res.Methodology != "" {
		t.Errorf("failed aspect should be empty, got %q", res.Methodology)
	}
}

func TestResult_MapHasAllKeys(t *testing.T) {
	m := Result{}.Map()
	for _, k := range []string{KeyContributions, KeyMethodology, KeyResults} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
	if len(m) != 3 {
		t.Errorf("expected 3 keys, got %d", len(m))
	}
}

func TestBuildAspectPrompt(t *testing.T) {
	p := BuildAspectPrompt("results", "BODY")
	if !strings.HasPrefix(p, "From the following research paper, please extract and summarize the results.") {
		t.Errorf("unexpected prompt head: %q", p)
	}
	if !strings.HasSuffix(p, "Please provide a detailed summary of the results:") {
		t.Errorf("unexpected prompt tail: %q", p)
	}
}

func TestExtract_ZeroTemperature(t *testing.T) {
	var temps []float64
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (string, error) {
		temps = append(temps, req.Temperature)
		return "x", nil
	})

	NewExtractor(client, Options{Temperature: llm.Float(0)}, nil).Extract(context.Background(), "paper")
	for _, temp := range temps {
		if temp != 0 {
			t.Fatalf("expected temperature 0 to be sent, got %v", temps)
		}
	}
	if len(temps) != 3 {
		t.Errorf("expected 3 calls, got %d", len(temps))
	}
}
