package identity

import (
	"testing"

	"github.com/you/classauth/domain"
)

func TestNormalizer_Phone(t *testing.T) {
	n := NewNormalizer("VN")

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"E.164 input unchanged", "+84901234567", "+84901234567", false},
		{"E.164 with spaces", "+84 90 123 4567", "+84901234567", false},
		{"national format uses default region", "0901234567", "+84901234567", false},
		{"US number with country code", "+14155552671", "+14155552671", false},
		{"too short", "12", "", true},
		{"letters", "phone-number", "", true},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw, KindPhone)
			if tt.wantErr {
				if err != domain.ErrInvalidIdentity {
					t.Fatalf("expected ErrInvalidIdentity, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Email(t *testing.T) {
	n := NewNormalizer("US")

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"lowercased and trimmed", "  Teacher@School.EDU  ", "teacher@school.edu", false},
		{"already canonical", "student@example.com", "student@example.com", false},
		{"missing at sign", "not-an-email", "", true},
		{"at sign first", "@example.com", "", true},
		{"at sign last", "user@", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw, KindEmail)
			if tt.wantErr {
				if err != domain.ErrInvalidIdentity {
					t.Fatalf("expected ErrInvalidIdentity, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// Normalization feeds both the lookup index and the HMAC message, so it must
// be a fixed point: normalizing an already-normalized value changes nothing.
func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer("VN")

	inputs := []struct {
		raw  string
		kind Kind
	}{
		{"+84 90 123 4567", KindPhone},
		{"0901234567", KindPhone},
		{"  Teacher@School.EDU ", KindEmail},
	}

	for _, in := range inputs {
		first, err := n.Normalize(in.raw, in.kind)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", in.raw, err)
		}
		second, err := n.Normalize(first, in.kind)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)): %v", in.raw, err)
		}
		if first != second {
			t.Errorf("normalize not idempotent for %q: %q != %q", in.raw, first, second)
		}
	}
}

func TestDetect(t *testing.T) {
	if Detect("user@example.com") != KindEmail {
		t.Error("expected email kind for address with @")
	}
	if Detect("+84901234567") != KindPhone {
		t.Error("expected phone kind for number")
	}
}
