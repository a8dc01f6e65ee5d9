package signer

import (
	"net/url"
	"testing"
	"time"
)

func TestSignatureDeterminism(t *testing.T) {
	payload := "symbol=BTCUSDT&timestamp=1499040000000"

	first := Signature("secret", payload)
	second := Signature("secret", payload)

	if first != second {
		t.Errorf("identical inputs produced different signatures: %s vs %s", first, second)
	}
}

func TestSignatureSensitivity(t *testing.T) {
	base := Signature("secret", "symbol=BTCUSDT&timestamp=1499040000000")

	changedParam := Signature("secret", "symbol=ETHUSDT&timestamp=1499040000000")
	if changedParam == base {
		t.Error("changing a parameter did not change the signature")
	}

	changedSecret := Signature("other-secret", "symbol=BTCUSDT&timestamp=1499040000000")
	if changedSecret == base {
		t.Error("changing the secret did not change the signature")
	}
}

func TestSignMissingCredential(t *testing.T) {
	s := New("", "", 0)

	if _, err := s.Sign(url.Values{}); err != ErrMissingCredential {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestSignAppendsWithoutMutating(t *testing.T) {
	s := New("key", "secret", 30*time.Second)

	params := url.Values{}
	params.Set("symbol", "BTCUSDT")

	signed, err := s.Sign(params)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if len(params) != 1 {
		t.Errorf("input params were mutated: %v", params)
	}
	if signed.Get("timestamp") == "" {
		t.Error("signed params missing timestamp")
	}
	if signed.Get("recvWindow") != "30000" {
		t.Errorf("expected recvWindow 30000, got %s", signed.Get("recvWindow"))
	}
	if signed.Get("signature") == "" {
		t.Error("signed params missing signature")
	}
}

func TestTimestampStrictlyIncreasing(t *testing.T) {
	s := New("key", "secret", 0)

	prev := int64(0)
	for i := 0; i < 100; i++ {
		ts := s.Timestamp()
		if ts <= prev {
			t.Fatalf("timestamp %d not greater than previous %d", ts, prev)
		}
		prev = ts
	}
}

func TestSignNeverEmitsSecret(t *testing.T) {
	secret := "super-secret-value"
	s := New("key", secret, 0)

	params := url.Values{}
	params.Set("symbol", "BTCUSDT")

	signed, err := s.Sign(params)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	for k, vs := range signed {
		for _, v := range vs {
			if v == secret {
				t.Errorf("secret leaked in parameter %s", k)
			}
		}
	}
}

func TestTimestampOffset(t *testing.T) {
	s := New("key", "secret", 0)
	s.SetOffset(5 * time.Second)

	ts := s.Timestamp()
	want := time.Now().UnixMilli() + 5000 - safetyBiasMs

	if diff := ts - want; diff < -100 || diff > 100 {
		t.Errorf("timestamp %d not near expected %d (diff %dms)", ts, want, diff)
	}
}
