package payment

import (
	"errors"
	"math"
	"testing"
)

func TestToMinor(t *testing.T) {
	cases := map[int64]int64{0: 0, 1: 100, 3600: 360000, 12000: 1200000}
	for major, want := range cases {
		got, err := ToMinor(major)
		if err != nil || got != want {
			t.Fatalf("ToMinor(%d) = %d, %v, want %d", major, got, err, want)
		}
	}
	for _, major := range []int64{math.MaxInt64/100 + 1, 200_000_000_000_000_000, -1} {
		if _, err := ToMinor(major); !errors.Is(err, ErrAmountRange) {
			t.Fatalf("ToMinor(%d): expected ErrAmountRange, got %v", major, err)
		}
	}
	if got, err := ToMinor(math.MaxInt64 / 100); err != nil || got != math.MaxInt64/100*100 {
		t.Fatalf("largest convertible amount: %d, %v", got, err)
	}
}

func TestAmountArithmetic(t *testing.T) {
	if got, err := MulAmount(2000, 5); err != nil || got != 10000 {
		t.Fatalf("MulAmount = %d, %v", got, err)
	}
	if _, err := MulAmount(2000, 5_000_000_000_000_000); !errors.Is(err, ErrAmountRange) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if got, err := MulAmount(0, math.MaxInt64); err != nil || got != 0 {
		t.Fatalf("zero factor: %d, %v", got, err)
	}
	if _, err := AddAmount(math.MaxInt64, 1); !errors.Is(err, ErrAmountRange) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if got, err := AddAmount(1000, 10); err != nil || got != 1010 {
		t.Fatalf("AddAmount = %d, %v", got, err)
	}
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("order_1", "pay_1", "secret")
	if !VerifySignature("order_1", "pay_1", sig, "secret") {
		t.Fatalf("expected valid signature")
	}
	if VerifySignature("order_2", "pay_1", sig, "secret") {
		t.Fatalf("signature must bind the order id")
	}
	if VerifySignature("order_1", "pay_1", sig, "other") {
		t.Fatalf("signature must bind the secret")
	}
	if VerifySignature("order_1", "pay_1", "", "secret") {
		t.Fatalf("empty signature must fail")
	}
}

func TestRazorpayStatusMapping(t *testing.T) {
	cases := map[string]Status{
		"paid":      StatusPaid,
		"created":   StatusPending,
		"attempted": StatusPending,
		"weird":     StatusFailed,
	}
	for in, want := range cases {
		if got := razorpayStatus(in); got != want {
			t.Fatalf("razorpayStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripeReturnURL(t *testing.T) {
	s := &Stripe{frontendURL: "https://shop.example"}
	got := s.returnURL(false, "abc")
	want := "https://shop.example/verify?orderId=abc&success=false"
	if got != want {
		t.Fatalf("returnURL = %q, want %q", got, want)
	}
}
