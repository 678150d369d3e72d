package matte

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/mattework/internal/scene"
)

// ErrInvalidInput means user-entered ID text is neither empty nor a
// non-negative base-10 integer.
var ErrInvalidInput = errors.New("invalid id input")

// ParseID converts cell text to an ID. Empty text (after trimming) is the
// unset ID.
func ParseID(text string) (scene.ID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return scene.NoID, nil
	}
	if !IsDigits(text) {
		return scene.NoID, fmt.Errorf("%q: %w", text, ErrInvalidInput)
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return scene.NoID, fmt.Errorf("%q: %w", text, ErrInvalidInput)
	}
	return scene.IDOf(v), nil
}

// IsDigits reports whether s is non-empty and only ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
