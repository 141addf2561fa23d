// Package pipeline sequences one tool invocation: translate the intent,
// fetch the OData result, distill it, wrap the response.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mcp-dynamics-go/distill"
	"mcp-dynamics-go/dynamics"
	"mcp-dynamics-go/query"
)

// Error is a pipeline failure carrying an HTTP-style status for the tool
// boundary: 400 for a rejected input, 500 for anything internal.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

// ErrEmptyIntent rejects an empty context before the pipeline starts.
var ErrEmptyIntent = &Error{Status: 400, Detail: "context is required"}

// Fetcher is the retrieval dependency, satisfied by *dynamics.Client.
type Fetcher interface {
	Fetch(ctx context.Context, queryPath string) (dynamics.Result, error)
}

// Response is the caller-facing envelope.
type Response struct {
	Message          string `json:"message"`
	ProcessedContext string `json:"processedContext"`
}

// Pipeline holds the four collaborators. Stateless across invocations.
type Pipeline struct {
	translator query.Translator
	fetcher    Fetcher
	distiller  distill.Distiller
	log        *zap.Logger
}

func New(translator query.Translator, fetcher Fetcher, distiller distill.Distiller, log *zap.Logger) *Pipeline {
	return &Pipeline{translator: translator, fetcher: fetcher, distiller: distiller, log: log}
}

const greetingTemplate = "Hello, here is the information you requested:\n%s"

// Run executes translate → fetch → distill → wrap for one intent. Every
// failure comes back as a single *Error; no partial results.
func (p *Pipeline) Run(ctx context.Context, intent string) (Response, error) {
	if strings.TrimSpace(intent) == "" {
		return Response{}, ErrEmptyIntent
	}

	path, err := p.translator.Translate(ctx, intent)
	if err != nil {
		return Response{}, internal(fmt.Errorf("translate intent: %w", err))
	}
	p.log.Debug("translated intent", zap.String("query", path))

	res, err := p.fetcher.Fetch(ctx, path)
	if err != nil {
		return Response{}, internal(err)
	}

	text, err := p.distiller.Distill(ctx, res)
	if err != nil {
		// Distillation never aborts the invocation; render the failure as the
		// result text instead.
		p.log.Error("distillation failed", zap.Error(err))
		text = "error processing response: " + err.Error()
	}

	return Response{
		Message:          fmt.Sprintf(greetingTemplate, text),
		ProcessedContext: text,
	}, nil
}

func internal(err error) *Error {
	if perr, ok := err.(*Error); ok {
		return perr
	}
	return &Error{Status: 500, Detail: err.Error()}
}
