package primitives

import (
	"strings"
	"testing"
)

func TestHashString_TestVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "hello world",
			in:   "hello world",
			want: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HashString(tt.in); got != tt.want {
				t.Errorf("HashString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHashString_LowercaseHex(t *testing.T) {
	t.Parallel()

	h := HashString("test")
	if len(h) != 64 {
		t.Fatalf("digest length = %d, want 64", len(h))
	}
	if h != strings.ToLower(h) {
		t.Errorf("digest %q contains uppercase characters", h)
	}
}

func TestHashString_Deterministic(t *testing.T) {
	t.Parallel()

	if HashString("test data") != HashString("test data") {
		t.Error("equal inputs produced different digests")
	}
}

func TestVerifyHash(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	good := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	bad := strings.Repeat("0", 64)

	if !VerifyHash(data, good) {
		t.Error("VerifyHash rejected the correct digest")
	}
	if VerifyHash(data, bad) {
		t.Error("VerifyHash accepted a wrong digest")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "ab", false},
		{"", "", true},
	}

	for _, tt := range tests {
		if got := ConstantTimeEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("ConstantTimeEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
