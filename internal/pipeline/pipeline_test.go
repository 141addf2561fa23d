package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcp-dynamics-go/distill"
	"mcp-dynamics-go/dynamics"
	"mcp-dynamics-go/query"
)

type stubFetcher struct {
	res   dynamics.Result
	err   error
	calls int
	paths []string
}

func (s *stubFetcher) Fetch(_ context.Context, queryPath string) (dynamics.Result, error) {
	s.calls++
	s.paths = append(s.paths, queryPath)
	return s.res, s.err
}

type stubDistiller struct {
	text string
	err  error
}

func (s stubDistiller) Distill(_ context.Context, _ dynamics.Result) (string, error) {
	return s.text, s.err
}

type failingTranslator struct{}

func (failingTranslator) Translate(_ context.Context, _ string) (string, error) {
	return "", errors.New("model unreachable")
}

func customersResult() dynamics.Result {
	return dynamics.Result{
		Kind: dynamics.KindJSON,
		Doc: map[string]any{
			"value": []any{
				map[string]any{"AccountNumber": "A1", "DisplayName": "Contoso"},
			},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	fetcher := &stubFetcher{res: customersResult()}
	p := New(query.Heuristic{}, fetcher, distill.Heuristic{}, zap.NewNop())

	resp, err := p.Run(context.Background(), "get top 5 customers")
	require.NoError(t, err)

	require.Equal(t, []string{"CustomersV3?$top=5"}, fetcher.paths)
	assert.Equal(t, "A1: Contoso", resp.ProcessedContext)
	assert.Equal(t, "Hello, here is the information you requested:\nA1: Contoso", resp.Message)
}

func TestRunRejectsEmptyIntentBeforeAnyCall(t *testing.T) {
	for _, intent := range []string{"", "   ", "\n\t"} {
		fetcher := &stubFetcher{}
		p := New(query.Heuristic{}, fetcher, distill.Heuristic{}, zap.NewNop())

		_, err := p.Run(context.Background(), intent)
		require.Error(t, err)

		var perr *Error
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 400, perr.Status)
		assert.Equal(t, 0, fetcher.calls, "no outbound call may happen for empty input")
	}
}

func TestRunDelegatedFailureFallsBackAndSucceeds(t *testing.T) {
	fetcher := &stubFetcher{res: customersResult()}
	translator := query.NewWithFallback(failingTranslator{}, query.Heuristic{}, zap.NewNop())
	p := New(translator, fetcher, distill.Heuristic{}, zap.NewNop())

	resp, err := p.Run(context.Background(), "get top 5 customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"CustomersV3?$top=5"}, fetcher.paths)
	assert.Equal(t, "A1: Contoso", resp.ProcessedContext)
}

func TestRunFetchFailureIsInternalError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("identity provider unreachable")}
	p := New(query.Heuristic{}, fetcher, distill.Heuristic{}, zap.NewNop())

	_, err := p.Run(context.Background(), "list customers")
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 500, perr.Status)
	assert.Contains(t, perr.Detail, "identity provider unreachable")
}

func TestRunErrorResultStillDistills(t *testing.T) {
	fetcher := &stubFetcher{res: dynamics.Result{
		Kind:    dynamics.KindError,
		Status:  502,
		Message: "bad gateway",
	}}
	p := New(query.Heuristic{}, fetcher, distill.Heuristic{}, zap.NewNop())

	resp, err := p.Run(context.Background(), "list customers")
	require.NoError(t, err)
	assert.Contains(t, resp.ProcessedContext, "502")
	assert.Contains(t, resp.ProcessedContext, "bad gateway")
}

func TestRunDistillerFailureDoesNotAbort(t *testing.T) {
	fetcher := &stubFetcher{res: customersResult()}
	p := New(query.Heuristic{}, fetcher, stubDistiller{err: errors.New("boom")}, zap.NewNop())

	resp, err := p.Run(context.Background(), "list customers")
	require.NoError(t, err)
	assert.Equal(t, "error processing response: boom", resp.ProcessedContext)
}
