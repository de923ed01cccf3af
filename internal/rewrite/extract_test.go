package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/note"
)

func TestExtractTextPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"content", `{"content":"c","message":"m"}`, "c"},
		{"empty content wins", `{"content":"","message":"m"}`, ""},
		{"message string", `{"message":"m"}`, "m"},
		{"message object", `{"message":{"role":"assistant","content":"mo"}}`, "mo"},
		{"choice message", `{"choices":[{"message":{"role":"assistant","content":"cm"}}]}`, "cm"},
		{"choice delta", `{"choices":[{"delta":{"content":"cd"}}]}`, "cd"},
		{"null message falls through", `{"message":null,"choices":[{"message":{"content":"x"}}]}`, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTextErrors(t *testing.T) {
	for _, body := range []string{`not json`, `{"other":1}`, `{"choices":[]}`} {
		_, err := ExtractText([]byte(body))
		var de *note.DecodeError
		assert.ErrorAs(t, err, &de, body)
	}
}
