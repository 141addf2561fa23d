// Package query turns a free-text intent into a relative OData path (the part
// after the environment's /data/ root).
package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"mcp-dynamics-go/llm"
)

// Translator converts an intent into an OData query path.
type Translator interface {
	Translate(ctx context.Context, intent string) (string, error)
}

var topNPattern = regexp.MustCompile(`top\s+(\d+)`)

// Heuristic is the deterministic, network-free translator. It never fails and
// is the safety net behind the delegated strategy.
type Heuristic struct{}

func (Heuristic) Translate(_ context.Context, intent string) (string, error) {
	lower := strings.ToLower(intent)
	if strings.Contains(lower, "customers") {
		if m := topNPattern.FindStringSubmatch(lower); m != nil {
			return "CustomersV3?$top=" + m[1], nil
		}
		return "CustomersV3?$top=50", nil
	}
	return "CustomersV3?$top=10", nil
}

const translateSystemPrompt = "You generate valid OData query paths for Dynamics 365 Finance & Operations. " +
	"Return just the relative URL path after /data/ with no explanation or markdown. " +
	"Example: CustomersV3?$top=10"

// Delegated asks the configured text-generation service for the path.
type Delegated struct {
	gen llm.Generator
}

func NewDelegated(gen llm.Generator) *Delegated {
	return &Delegated{gen: gen}
}

func (d *Delegated) Translate(ctx context.Context, intent string) (string, error) {
	out, err := d.gen.Generate(ctx, translateSystemPrompt, intent)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("model returned an empty query path")
	}
	return out, nil
}

// fallback tries the primary translator and recovers with the fallback on any
// error. The fallback must not itself be able to fail.
type fallback struct {
	primary  Translator
	fallback Translator
	log      *zap.Logger
}

// NewWithFallback wires the selection policy: prefer primary when configured,
// otherwise (or on any error from it) use fb. A nil primary yields fb alone.
func NewWithFallback(primary, fb Translator, log *zap.Logger) Translator {
	if primary == nil {
		return fb
	}
	return &fallback{primary: primary, fallback: fb, log: log}
}

func (f *fallback) Translate(ctx context.Context, intent string) (string, error) {
	path, err := f.primary.Translate(ctx, intent)
	if err == nil {
		return path, nil
	}
	f.log.Warn("delegated translation failed, using heuristic", zap.Error(err))
	return f.fallback.Translate(ctx, intent)
}
