package text

import (
	"math/rand"
	"strings"
	"testing"
	"unicode"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "passthrough clean hindi",
			input: "नमस्ते भारत",
			want:  "नमस्ते भारत",
		},
		{
			name:  "removes digits and converts danda",
			input: "नमस्ते भारत! यह 123 एक परीक्षण वाक्य है।",
			want:  "नमस्ते भारत! यह एक परीक्षण वाक्य है.",
		},
		{
			name:  "removes devanagari digits",
			input: "वर्ष १९४७ में",
			want:  "वर्ष में",
		},
		{
			name:  "strips latin letters",
			input: "हिंदी hindi मिश्रित text",
			want:  "हिंदी मिश्रित",
		},
		{
			name:  "keeps permitted punctuation",
			input: "क्या? हाँ! ठीक, अच्छा. खेल-कूद",
			want:  "क्या? हाँ! ठीक, अच्छा. खेल-कूद",
		},
		{
			name:  "collapses whitespace runs",
			input: "एक\t\tदो   तीन\nचार",
			want:  "एक दो तीन चार",
		},
		{
			name:  "trims leading and trailing whitespace",
			input: "  नमस्ते  ",
			want:  "नमस्ते",
		},
		{
			name:  "danda becomes ascii period",
			input: "वाक्य समाप्त।",
			want:  "वाक्य समाप्त.",
		},
		{
			name:  "strips emoji and symbols",
			input: "चाय ☕ अच्छी है €",
			want:  "चाय अच्छी है",
		},
		{
			name:  "empty input stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only becomes empty",
			input: " \t\n ",
			want:  "",
		},
		{
			name:  "nothing to keep becomes empty",
			input: "abc 123 XYZ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// permittedRune reports whether r may appear in normalized output.
func permittedRune(r rune) bool {
	if r >= 0x0900 && r <= 0x097F {
		return true
	}
	if unicode.IsSpace(r) {
		return true
	}

	return strings.ContainsRune(",.!?-", r)
}

func TestNormalize_OutputOnlyPermittedRunes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		input := randomString(rng, 64)

		for _, r := range Normalize(input) {
			if !permittedRune(r) {
				t.Fatalf("Normalize(%q) produced forbidden rune %q", input, r)
			}
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		once := Normalize(randomString(rng, 64))
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent: %q renormalized to %q", once, twice)
		}
	}
}

func TestNormalize_WhitespaceGuarantees(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 1000; i++ {
		input := randomString(rng, 64)
		got := Normalize(input)

		if got != strings.TrimSpace(got) {
			t.Fatalf("Normalize(%q) = %q has edge whitespace", input, got)
		}
		if strings.Contains(got, "  ") {
			t.Fatalf("Normalize(%q) = %q has doubled interior spaces", input, got)
		}
	}
}

func TestNormalizeLines_PreservesOrderAndCount(t *testing.T) {
	input := []string{
		"नमस्ते 123",
		"",
		"english only",
		"दूसरा वाक्य।",
	}

	got := NormalizeLines(input)

	want := []string{"नमस्ते", "", "", "दूसरा वाक्य."}
	if len(got) != len(want) {
		t.Fatalf("NormalizeLines returned %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// randomString draws runes from ranges that exercise every normalization
// rule: Devanagari, ASCII, punctuation, whitespace, and arbitrary unicode.
func randomString(rng *rand.Rand, maxLen int) string {
	var b strings.Builder

	n := rng.Intn(maxLen)
	for i := 0; i < n; i++ {
		switch rng.Intn(5) {
		case 0:
			b.WriteRune(rune(0x0900 + rng.Intn(0x80))) // Devanagari block
		case 1:
			b.WriteRune(rune(0x20 + rng.Intn(0x5F))) // printable ASCII
		case 2:
			marks := []rune{' ', '\t', '\n', '।', ',', '.', '!', '?', '-'}
			b.WriteRune(marks[rng.Intn(len(marks))])
		case 3:
			b.WriteRune(rune('0' + rng.Intn(10)))
		default:
			b.WriteRune(rune(rng.Intn(0x2FFF) + 1))
		}
	}

	return b.String()
}
