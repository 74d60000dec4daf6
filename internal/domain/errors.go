package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the search or resolver endpoint is unreachable
	ErrServerOffline = errors.New("resolver is unreachable")

	// ErrManifestMissing indicates the resolver response carried no manifest
	ErrManifestMissing = errors.New("response has no manifest")

	// ErrInvalidEncoding indicates a manifest that is not valid URL-safe base64
	ErrInvalidEncoding = errors.New("invalid manifest encoding")

	// ErrInvalidUTF8 indicates a decoded manifest that is not valid UTF-8 text
	ErrInvalidUTF8 = errors.New("decoded manifest is not valid UTF-8")

	// ErrUnrecognizedManifest indicates a manifest that is neither a playlist nor a URL list
	ErrUnrecognizedManifest = errors.New("no 'urls' array found")

	// ErrEmptyURLList indicates a URL-list manifest with no entries
	ErrEmptyURLList = errors.New("empty urls")

	// ErrInvalidURLEntry indicates a URL-list manifest whose first entry is not a string
	ErrInvalidURLEntry = errors.New("first urls entry is not a string")

	// ErrPlayerUnavailable indicates the player session connection is gone
	ErrPlayerUnavailable = errors.New("player session is unavailable")

	// ErrPlayerCommand indicates the player rejected or failed a command
	ErrPlayerCommand = errors.New("player command failed")
)
