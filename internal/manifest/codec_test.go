package manifest

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mmcdole/hifi/internal/domain"
)

func TestDecodePaddingRemainders(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMod int
	}{
		{"remainder 0", "abc", 0},
		{"remainder 2", "a", 2},
		{"remainder 3", "ab", 3},
		{"longer remainder 0", "hello, world", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := base64.RawURLEncoding.EncodeToString([]byte(tt.text))
			if tt.wantMod != 0 && len(encoded)%4 != tt.wantMod {
				t.Fatalf("test setup: len(%q)%%4 = %d, want %d", encoded, len(encoded)%4, tt.wantMod)
			}

			got, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", encoded, err)
			}
			if got != tt.text {
				t.Errorf("Decode(%q) = %q, want %q", encoded, got, tt.text)
			}
		})
	}
}

func TestDecodeMatchesStandardDecoding(t *testing.T) {
	// Bytes chosen so the URL-safe form contains both '-' and '_'
	raw := []byte{0xfb, 0xff, 0xbf, 'o', 'k', 0xc3, 0xa9}
	std := base64.StdEncoding.EncodeToString(raw)
	urlSafe := strings.TrimRight(strings.NewReplacer("+", "-", "/", "_").Replace(std), "=")

	if !strings.ContainsAny(urlSafe, "-_") {
		t.Fatalf("test setup: %q has no URL-safe characters", urlSafe)
	}

	// Not valid UTF-8, so compare at the error level and then with valid text
	if _, err := Decode(urlSafe); !errors.Is(err, domain.ErrInvalidUTF8) {
		t.Errorf("Decode(%q) error = %v, want ErrInvalidUTF8", urlSafe, err)
	}

	text := "¿¾>? query=~~~&x=ÿ"
	encoded := base64.RawURLEncoding.EncodeToString([]byte(text))
	want, err := base64.StdEncoding.DecodeString(base64.StdEncoding.EncodeToString([]byte(text)))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got != string(want) {
		t.Errorf("Decode = %q, want %q", got, string(want))
	}
}

func TestDecodeRoundTripAllRemainders(t *testing.T) {
	base := "<?xml version=\"1.0\"?><MPD>ünïcødé</MPD>"
	seen := map[int]bool{}

	for n := 1; n <= len(base); n++ {
		text := base[:n]
		encoded := base64.RawURLEncoding.EncodeToString([]byte(text))
		seen[len(encoded)%4] = true

		got, err := Decode(encoded)
		if !utf8.ValidString(text) {
			// A cut through a multi-byte rune is not valid UTF-8
			if !errors.Is(err, domain.ErrInvalidUTF8) {
				t.Errorf("Decode(prefix %d) error = %v, want ErrInvalidUTF8", n, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Decode(prefix %d) error: %v", n, err)
		}
		if got != text {
			t.Errorf("round trip of %q = %q", text, got)
		}
	}

	// Padded input is accepted too
	padded := base64.URLEncoding.EncodeToString([]byte(base))
	if got, err := Decode(padded); err != nil || got != base {
		t.Errorf("Decode(padded) = %q, %v", got, err)
	}

	for _, mod := range []int{0, 2, 3} {
		if !seen[mod] {
			t.Errorf("round trip never exercised remainder %d", mod)
		}
	}
}

func TestDecodeIsStable(t *testing.T) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(`{"urls":["https://example/stream.m4a"]}`))

	first, err := Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Decode is not stable: %q != %q", first, second)
	}
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	encoded := "  " + base64.RawURLEncoding.EncodeToString([]byte("trimmed")) + "\n"

	got, err := Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if got != "trimmed" {
		t.Errorf("Decode = %q, want %q", got, "trimmed")
	}
}

func TestDecodeRejectsRemainderOne(t *testing.T) {
	for _, encoded := range []string{"a", "abcde", "  abcde  "} {
		got, err := Decode(encoded)
		if !errors.Is(err, domain.ErrInvalidEncoding) {
			t.Errorf("Decode(%q) error = %v, want ErrInvalidEncoding", encoded, err)
		}
		if got != "" {
			t.Errorf("Decode(%q) = %q, want empty result", encoded, got)
		}
	}
}

func TestDecodeRejectsBadAlphabet(t *testing.T) {
	_, err := Decode("ab*d")
	if !errors.Is(err, domain.ErrInvalidEncoding) {
		t.Errorf("error = %v, want ErrInvalidEncoding", err)
	}
}
