// SPDX-License-Identifier: MIT

package portal

import (
	"errors"
	"fmt"
)

// ErrInvalidSlot is returned for slot letters outside A..Z / a..z.
var ErrInvalidSlot = errors.New("invalid slot letter")

// SlotIndex maps a slot letter to its 1-based alphabetic position,
// case-insensitive (A/a -> 1, B/b -> 2, ...). Non-alphabetic input is
// rejected instead of being silently mismapped.
func SlotIndex(letter string) (int, error) {
	if len(letter) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, letter)
	}
	c := letter[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 1, nil
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, letter)
}

// ValidateSlot reports whether letter is a usable slot letter.
func ValidateSlot(letter string) error {
	_, err := SlotIndex(letter)
	return err
}
