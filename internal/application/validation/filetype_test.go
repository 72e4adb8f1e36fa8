package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAcceptable(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"image/png", true},
		{"image/jpg", true},
		{"image/jpeg", true},
		{"IMAGE/PNG", true},
		{"image/JPEG", true},
		{"receipt.png", true},
		{"receipt.jpg", true},
		{"receipt.JPEG", true},
		{"video/mp4", false},
		{"application/pdf", false},
		{"image/gif", false},
		{"image/png; charset=binary", false},
		{"png/image", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptable(tt.mediaType))
		})
	}
}
