// Package manifest decodes and classifies resolver manifests.
package manifest

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/hifi/internal/domain"
)

// urlSafeAlphabet maps the URL-safe characters back to the standard alphabet
var urlSafeAlphabet = strings.NewReplacer("-", "+", "_", "/")

// Decode turns a URL-safe, padding-stripped base64 manifest into text.
//
// The input is trimmed, translated to the standard alphabet and re-padded
// according to its length mod 4. A remainder of 1 cannot come from any byte
// sequence and is rejected with domain.ErrInvalidEncoding.
func Decode(encoded string) (string, error) {
	t := urlSafeAlphabet.Replace(strings.TrimSpace(encoded))

	switch len(t) % 4 {
	case 1:
		return "", fmt.Errorf("%w: length %d is not a valid base64 length", domain.ErrInvalidEncoding, len(t))
	case 2:
		t += "=="
	case 3:
		t += "="
	}

	raw, err := base64.StdEncoding.DecodeString(t)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidEncoding, err)
	}

	if !utf8.Valid(raw) {
		return "", domain.ErrInvalidUTF8
	}

	return string(raw), nil
}
