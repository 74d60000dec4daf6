package manifest

import (
	"encoding/json"
	"strings"

	"github.com/mmcdole/hifi/internal/domain"
)

// xmlProlog prefixes every streaming playlist (DASH MPD) manifest
const xmlProlog = "<?xml"

// rule tries to classify decoded text. ok is false when the rule does not apply.
type rule func(decoded string) (m domain.Manifest, ok bool, err error)

// rules are evaluated in order; the first applicable rule wins
var rules = []rule{
	playlistDocumentRule,
	urlListRule,
}

// Classify determines the shape of a decoded manifest.
// Unmatched input yields a ManifestUnrecognized manifest and domain.ErrUnrecognizedManifest.
func Classify(decoded string) (domain.Manifest, error) {
	for _, r := range rules {
		if m, ok, err := r(decoded); ok {
			return m, err
		}
	}
	return domain.Manifest{Kind: domain.ManifestUnrecognized}, domain.ErrUnrecognizedManifest
}

func playlistDocumentRule(decoded string) (domain.Manifest, bool, error) {
	if !strings.HasPrefix(strings.TrimLeft(decoded, " \t\r\n"), xmlProlog) {
		return domain.Manifest{}, false, nil
	}
	return domain.Manifest{
		Kind:     domain.ManifestPlaylistDocument,
		Document: decoded,
	}, true, nil
}

func urlListRule(decoded string) (domain.Manifest, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(decoded), &fields); err != nil {
		return domain.Manifest{}, false, nil
	}
	rawURLs, ok := fields["urls"]
	if !ok {
		return domain.Manifest{}, false, nil
	}

	var urls []json.RawMessage
	if err := json.Unmarshal(rawURLs, &urls); err != nil {
		// "urls" present but not an array
		return domain.Manifest{}, false, nil
	}

	// Descriptive fields are informational; a mistyped one is left empty
	m := domain.Manifest{
		Kind:           domain.ManifestURLList,
		MimeType:       stringField(fields, "mimeType"),
		Codecs:         stringField(fields, "codecs"),
		EncryptionType: stringField(fields, "encryptionType"),
	}

	if len(urls) == 0 {
		return m, true, domain.ErrEmptyURLList
	}

	for i, raw := range urls {
		u, ok := jsonString(raw)
		if !ok {
			if i == 0 {
				return m, true, domain.ErrInvalidURLEntry
			}
			continue
		}
		m.URLs = append(m.URLs, u)
	}

	return m, true, nil
}

// stringField returns fields[name] when it is a JSON string, otherwise ""
func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	s, _ := jsonString(raw)
	return s
}

// jsonString decodes raw as a JSON string. null and non-string values are rejected.
func jsonString(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, `"`) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
