package logger

import "testing"

func TestMaskParams(t *testing.T) {
	params := map[string]string{
		"symbol":    "BTCUSDT",
		"api_key":   "abcd1234",
		"API_KEY":   "abcd1234",
		"X-Api-Key": "abcd1234",
		"limit":     "1000",
	}

	masked := MaskParams(params)

	if masked["symbol"] != "BTCUSDT" || masked["limit"] != "1000" {
		t.Errorf("non-sensitive values must pass through: %v", masked)
	}
	for _, k := range []string{"api_key", "API_KEY", "X-Api-Key"} {
		if masked[k] != "***" {
			t.Errorf("expected %s masked, got %q", k, masked[k])
		}
	}

	// The original map stays untouched.
	if params["api_key"] != "abcd1234" {
		t.Error("MaskParams must not mutate its input")
	}
}

func TestMaskParamsNil(t *testing.T) {
	if MaskParams(nil) != nil {
		t.Error("nil in, nil out")
	}
}
