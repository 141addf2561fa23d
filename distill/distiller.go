// Package distill collapses a normalized OData result into the short text
// returned to the caller.
package distill

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mcp-dynamics-go/dynamics"
	"mcp-dynamics-go/llm"
)

// Distiller converts a retrieval result into caller-facing text.
type Distiller interface {
	Distill(ctx context.Context, res dynamics.Result) (string, error)
}

// NoCustomersMessage is returned when the payload carries no rows.
const NoCustomersMessage = "no customers found"

// Candidate field names tried in order against each row. The order encodes
// known historical variants of the source schema; do not reorder.
var (
	idFields   = []string{"PartyNumber", "CustomerAccount", "AccountNumber", "Id", "RecId"}
	nameFields = []string{"Name", "LegalName", "DisplayName", "PartyName", "CustomerName"}
)

// Heuristic is the deterministic distiller. It never returns a non-nil error
// from well-formed input and never calls out to a network.
type Heuristic struct{}

func (Heuristic) Distill(_ context.Context, res dynamics.Result) (string, error) {
	switch res.Kind {
	case dynamics.KindRaw:
		// Already text: pass through unchanged.
		return res.Raw, nil
	case dynamics.KindError:
		return fmt.Sprintf("ERP request failed with status %d: %s", res.Status, res.Message), nil
	}

	rows, ok := res.Doc["value"].([]any)
	if !ok || len(rows) == 0 {
		return NoCustomersMessage, nil
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, firstField(row, idFields)+": "+firstField(row, nameFields))
	}
	if len(lines) == 0 {
		return NoCustomersMessage, nil
	}
	return strings.Join(lines, "\n"), nil
}

// firstField returns the first non-empty candidate value, or "unknown".
func firstField(row map[string]any, candidates []string) string {
	for _, key := range candidates {
		switch v := row[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return "unknown"
}

const distillSystemPrompt = "Extract only customer names and account identifiers from the data, one per line as '<account>: <name>'. " +
	"If no customer fields are present, return the original data unmodified in its original markup. " +
	"Return with no explanation or markdown."

// Delegated sends the stringified result to the text-generation service.
type Delegated struct {
	gen llm.Generator
}

func NewDelegated(gen llm.Generator) *Delegated {
	return &Delegated{gen: gen}
}

func (d *Delegated) Distill(ctx context.Context, res dynamics.Result) (string, error) {
	out, err := d.gen.Generate(ctx, distillSystemPrompt, stringify(res))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func stringify(res dynamics.Result) string {
	switch res.Kind {
	case dynamics.KindRaw:
		return res.Raw
	case dynamics.KindError:
		return fmt.Sprintf("ERP request failed with status %d: %s", res.Status, res.Message)
	}
	b, err := json.Marshal(res.Doc)
	if err != nil {
		return fmt.Sprintf("%v", res.Doc)
	}
	return string(b)
}

type fallback struct {
	primary  Distiller
	fallback Distiller
	log      *zap.Logger
}

// NewWithFallback mirrors the translator policy: prefer the delegated
// distiller, recover with the heuristic on any error. A nil primary yields
// fb alone.
func NewWithFallback(primary, fb Distiller, log *zap.Logger) Distiller {
	if primary == nil {
		return fb
	}
	return &fallback{primary: primary, fallback: fb, log: log}
}

func (f *fallback) Distill(ctx context.Context, res dynamics.Result) (string, error) {
	text, err := f.primary.Distill(ctx, res)
	if err == nil {
		return text, nil
	}
	f.log.Warn("delegated distillation failed, using heuristic", zap.Error(err))
	return f.fallback.Distill(ctx, res)
}
