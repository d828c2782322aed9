package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"shorter than max", "bonjour", 10, "bonjour"},
		{"exactly max", "bonjour", 7, "bonjour"},
		{"truncated", "bonjour tout le monde", 7, "bonjour..."},
		{"zero max", "bonjour", 0, "bonjour"},
		{"negative max", "bonjour", -1, "bonjour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestHashUser(t *testing.T) {
	h1 := HashUser("etudiant-42")
	h2 := HashUser("etudiant-42")
	h3 := HashUser("etudiant-43")

	if h1 != h2 {
		t.Errorf("HashUser is not deterministic: %q != %q", h1, h2)
	}
	if h1 == h3 {
		t.Error("distinct users produced the same hash")
	}
	if len(h1) != 40 {
		t.Errorf("hash length = %d, want 40", len(h1))
	}
	if h1 == "etudiant-42" {
		t.Error("hash must not equal the raw identifier")
	}
}
