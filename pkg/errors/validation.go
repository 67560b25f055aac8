package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxScriptSize bounds accepted script sources, in bytes. Import and
// evaluation are recursive, so nesting depth grows with input size.
const MaxScriptSize = 64 << 10

// ValidateScript validates script source before parsing.
//
// The validation rules are intentionally conservative:
//   - No empty scripts
//   - No null bytes
//   - Maximum size of MaxScriptSize bytes
func ValidateScript(src string) error {
	if strings.TrimSpace(src) == "" {
		return New(ErrCodeInvalidScript, "script cannot be empty")
	}

	if len(src) > MaxScriptSize {
		return New(ErrCodeInvalidScript, "script too large (max %d bytes)", MaxScriptSize)
	}

	if strings.ContainsRune(src, '\x00') {
		return New(ErrCodeInvalidScript, "script contains null bytes")
	}

	return nil
}

// storeKeyRegex matches keys accepted by the document stores.
var storeKeyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateKey validates a document store key. Keys become file names and
// Redis key suffixes, so they must be simple identifiers.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, not starting with a symbol
//   - No path traversal sequences (..)
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	const maxKeyLength = 128
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidKey, "key cannot contain path traversal sequences (..)")
	}

	if !storeKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidKey, "invalid key: %q", key)
	}

	return nil
}

// ValidateLabel validates a custom template label.
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}

	if len(label) > 64 {
		return New(ErrCodeInvalidInput, "label too long (max 64 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "label contains whitespace or control characters")
		}
	}

	return nil
}
