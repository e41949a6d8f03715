package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageData_IsURL(t *testing.T) {
	assert.True(t, ImageData("https://example.com/shelf.jpg").IsURL())
	assert.True(t, ImageData("http://example.com/shelf.jpg").IsURL())
	assert.True(t, ImageData("HTTPS://EXAMPLE.COM/shelf.jpg").IsURL())
	assert.False(t, ImageData("data:image/png;base64,AAAA").IsURL())
	assert.False(t, ImageData("AAAA").IsURL())
	assert.False(t, ImageData("").IsURL())
}

func TestImageData_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input ImageData
		want  string
	}{
		{
			name:  "https URL passes through unchanged",
			input: "https://cdn.example.com/a.png?x=1",
			want:  "https://cdn.example.com/a.png?x=1",
		},
		{
			name:  "http URL passes through unchanged",
			input: "http://example.com/shelf",
			want:  "http://example.com/shelf",
		},
		{
			name:  "jpeg data URI is kept as jpeg",
			input: "data:image/jpeg;base64,QUJD",
			want:  "data:image/jpeg;base64,QUJD",
		},
		{
			name:  "png data URI is rewrapped as jpeg",
			input: "data:image/png;base64,QUJD",
			want:  "data:image/jpeg;base64,QUJD",
		},
		{
			name:  "webp data URI is rewrapped as jpeg",
			input: "data:image/webp;base64,QUJD",
			want:  "data:image/jpeg;base64,QUJD",
		},
		{
			name:  "bare base64 body is wrapped",
			input: "QUJD",
			want:  "data:image/jpeg;base64,QUJD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Normalize()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageData_Normalize_Empty(t *testing.T) {
	for _, input := range []ImageData{"", "   ", "data:image/png;base64,"} {
		_, err := input.Normalize()
		assert.ErrorIs(t, err, ErrInvalidImage, "input %q", input)
	}
}
