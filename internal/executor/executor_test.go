package executor

import (
	"context"
	"math"
	"testing"
)

func TestSimulatedBuySellRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSimulated(1.0)

	res, err := s.ExecuteBuy(ctx, 0.4, 100)
	if err != nil || !res.Success {
		t.Fatalf("buy failed: %v / %+v", err, res)
	}
	base, token, _ := s.Balances(ctx)
	if math.Abs(base-0.6) > 1e-9 || math.Abs(token-0.004) > 1e-9 {
		t.Fatalf("balances after buy = %v/%v, want 0.6/0.004", base, token)
	}

	res, err = s.ExecuteSell(ctx, 0.004, 100)
	if err != nil || !res.Success {
		t.Fatalf("sell failed: %v / %+v", err, res)
	}
	base, token, _ = s.Balances(ctx)
	if math.Abs(base-1.0) > 1e-9 || math.Abs(token) > 1e-9 {
		t.Fatalf("balances after round trip = %v/%v, want 1.0/0", base, token)
	}
}

func TestSimulatedRejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	s := NewSimulated(1.0)

	res, err := s.ExecuteBuy(ctx, 2.0, 100)
	if err != nil {
		t.Fatalf("overdraft buy returned an error: %v", err)
	}
	if res.Success {
		t.Fatal("buy beyond the base balance succeeded")
	}

	res, _ = s.ExecuteSell(ctx, 0.1, 100)
	if res.Success {
		t.Fatal("sell with no token balance succeeded")
	}
}

func TestSimulatedRejectsZeroPrice(t *testing.T) {
	s := NewSimulated(1.0)
	res, err := s.ExecuteBuy(context.Background(), 0.1, 0)
	if err != nil {
		t.Fatalf("zero-price buy returned an error: %v", err)
	}
	if res.Success {
		t.Fatal("buy at zero price succeeded")
	}
}

func TestReadOnlyRefusesTrades(t *testing.T) {
	r := NewReadOnly(nil, "0xtoken", "0xwallet")
	res, err := r.ExecuteBuy(context.Background(), 0.1, 100)
	if err != nil {
		t.Fatalf("ExecuteBuy: %v", err)
	}
	if res.Success {
		t.Fatal("read-only executor accepted a trade")
	}
}
