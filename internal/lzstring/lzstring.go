// Package lzstring reads and writes the URI-safe lz-string text of legacy
// share links.
//
// Early versions of the app stored and shared a single deck as lz-string
// compressed text (the "t" query parameter and the "text"/"slides" storage
// keys).
package lzstring

import (
	"errors"
	"fmt"
	"strings"

	lz "github.com/daku10/go-lz-string"
)

const uriAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+-$"

// ErrCorrupt is returned when the input is not a valid compressed stream.
var ErrCorrupt = errors.New("lzstring: corrupt input")

// CompressToEncodedURIComponent compresses s into the URI-safe alphabet.
func CompressToEncodedURIComponent(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	out, err := lz.CompressToEncodedURIComponent(s)
	if err != nil {
		return "", fmt.Errorf("compressing text: %w", err)
	}
	return out, nil
}

// DecompressFromEncodedURIComponent reverses CompressToEncodedURIComponent.
// Spaces are read as '+', matching what URL decoding does to the alphabet.
func DecompressFromEncodedURIComponent(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	s = strings.ReplaceAll(s, " ", "+")
	if strings.Trim(s, uriAlphabet) != "" {
		return "", ErrCorrupt
	}
	out, err := lz.DecompressFromEncodedURIComponent(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}
