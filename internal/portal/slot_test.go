// SPDX-License-Identifier: MIT

package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotIndex(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{"A", 1},
		{"a", 1},
		{"B", 2},
		{"e", 5},
		{"Z", 26},
		{"z", 26},
	}
	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			got, err := SlotIndex(tt.letter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotIndexRejectsNonAlphabetic(t *testing.T) {
	for _, letter := range []string{"", "1", "@", "AB", "ä", " "} {
		t.Run("invalid_"+letter, func(t *testing.T) {
			_, err := SlotIndex(letter)
			assert.ErrorIs(t, err, ErrInvalidSlot)
		})
	}
}

func TestValidateSlot(t *testing.T) {
	assert.NoError(t, ValidateSlot("C"))
	assert.ErrorIs(t, ValidateSlot("3"), ErrInvalidSlot)
}
