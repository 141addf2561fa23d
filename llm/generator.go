// Package llm abstracts the text-generation service behind the delegated
// translate/distill strategies. Providers are interchangeable; the pipeline
// only sees Generator.
package llm

import "context"

// Generator produces a completion for a system instruction and user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
