package internal

import "testing"

func TestNewOTP(t *testing.T) {
	for _, digits := range []int{1, 4, 6, 10} {
		code, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d) error: %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("NewOTP(%d) length %d", digits, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in %q", code)
			}
		}
	}
}

func TestNewOTPRejectsBadLengths(t *testing.T) {
	for _, digits := range []int{0, -1, 65} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("NewOTP(%d) should fail", digits)
		}
	}
}

func TestNewOTPVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		code, err := NewOTP(6)
		if err != nil {
			t.Fatalf("NewOTP error: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("32 draws produced a single code")
	}
}
