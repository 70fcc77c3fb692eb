package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"local", "01712345678", "01712345678"},
		{"with plus prefix", "+8801712345678", "01712345678"},
		{"without plus", "8801712345678", "01712345678"},
		{"ten digits", "1712345678", "01712345678"},
		{"spaces and dashes", "017-1234 5678", "01712345678"},
		{"formatted international", "+880 1712-345678", "01712345678"},
		{"short", "12345", "12345"},
		{"empty", "", ""},
		{"letters only", "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.raw); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"01712345678", "+8801712345678", "1712345678", "880", "8800", "88088012345",
		"0", "", "  +880-17 1234 5678 ", "12345678901234", "0880123",
	}
	for _, in := range inputs {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"01712345678", true},
		{"0171234567", false},
		{"11712345678", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidPhone(tt.phone); got != tt.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestPhoneVariants(t *testing.T) {
	got := PhoneVariants("+880 1712-345678", "01712345678")
	want := []string{"01712345678", "+8801712345678", "8801712345678", "1712345678", "+880 1712-345678"}

	if len(got) != len(want) {
		t.Fatalf("PhoneVariants() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("variant[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	dedup := PhoneVariants("01712345678", "01712345678")
	if len(dedup) != 4 {
		t.Errorf("expected raw duplicate to be dropped, got %v", dedup)
	}
}

func TestPhoneSuffix(t *testing.T) {
	if got := PhoneSuffix("01712345678"); got != "1712345678" {
		t.Errorf("PhoneSuffix() = %q", got)
	}
	if got := PhoneSuffix("12345"); got != "12345" {
		t.Errorf("PhoneSuffix() short = %q", got)
	}
}
