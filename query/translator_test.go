package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	out string
	err error
}

func (s stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return s.out, s.err
}

func TestHeuristicTranslate(t *testing.T) {
	tests := []struct {
		name   string
		intent string
		want   string
	}{
		{"top n customers", "get top 5 customers", "CustomersV3?$top=5"},
		{"top n customers large", "I want the top 250 customers by revenue", "CustomersV3?$top=250"},
		{"case insensitive", "TOP 12 CUSTOMERS please", "CustomersV3?$top=12"},
		{"customers without top", "list customers in Germany", "CustomersV3?$top=50"},
		{"top without customers", "top 3 invoices", "CustomersV3?$top=10"},
		{"unrelated intent", "show me open purchase orders", "CustomersV3?$top=10"},
		{"top word without number", "show top customers", "CustomersV3?$top=50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (Heuristic{}).Translate(context.Background(), tt.intent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDelegatedTrimsOutput(t *testing.T) {
	d := NewDelegated(stubGenerator{out: "  CustomersV3?$top=7\n"})

	got, err := d.Translate(context.Background(), "top 7 customers")
	require.NoError(t, err)
	assert.Equal(t, "CustomersV3?$top=7", got)
}

func TestDelegatedEmptyOutputIsError(t *testing.T) {
	d := NewDelegated(stubGenerator{out: "   "})

	_, err := d.Translate(context.Background(), "customers")
	assert.Error(t, err)
}

func TestFallbackOnDelegatedError(t *testing.T) {
	failing := NewDelegated(stubGenerator{err: errors.New("model unreachable")})
	tr := NewWithFallback(failing, Heuristic{}, zap.NewNop())

	got, err := tr.Translate(context.Background(), "get top 5 customers")
	require.NoError(t, err)
	assert.Equal(t, "CustomersV3?$top=5", got)
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := NewDelegated(stubGenerator{out: "CustTransactions?$top=3"})
	tr := NewWithFallback(primary, Heuristic{}, zap.NewNop())

	got, err := tr.Translate(context.Background(), "get top 5 customers")
	require.NoError(t, err)
	assert.Equal(t, "CustTransactions?$top=3", got)
}

func TestNilPrimaryUsesFallbackDirectly(t *testing.T) {
	tr := NewWithFallback(nil, Heuristic{}, zap.NewNop())

	got, err := tr.Translate(context.Background(), "list customers")
	require.NoError(t, err)
	assert.Equal(t, "CustomersV3?$top=50", got)
}
