package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedAll(d *Decoder, chunks ...string) string {
	var b strings.Builder
	for _, c := range chunks {
		for _, tok := range d.Feed([]byte(c)) {
			b.WriteString(tok)
		}
	}
	for _, tok := range d.Close() {
		b.WriteString(tok)
	}
	return b.String()
}

func TestDecoderAcrossChunks(t *testing.T) {
	d := NewDecoder(nil)
	got := feedAll(d,
		"data: {\"choices\":[{\"delta\":{\"content\":\"AB\"}}]}\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"CD\"}}]}\n",
		"data: [DONE]\n",
	)
	assert.Equal(t, "ABCD", got)
	assert.True(t, d.Done())
}

func TestDecoderSplitRecord(t *testing.T) {
	d := NewDecoder(nil)

	assert.Empty(t, d.Feed([]byte("data: {\"choi")))
	assert.Equal(t, []string{"XY"}, d.Feed([]byte("ces\":[{\"delta\":{\"content\":\"XY\"}}]}\n")))
}

func TestDecoderSkipsMalformed(t *testing.T) {
	d := NewDecoder(nil)
	got := feedAll(d,
		"data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n",
		"data: {not json}\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n",
	)
	assert.Equal(t, "ab", got)
	assert.Equal(t, 1, d.Skipped())
}

func TestDecoderRecordShapes(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{
			name:   "no space after marker",
			chunks: []string{"data:{\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n"},
			want:   "x",
		},
		{
			name:   "no marker",
			chunks: []string{"{\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n"},
			want:   "x",
		},
		{
			name:   "crlf and blank lines",
			chunks: []string{"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\r\n\r\n"},
			want:   "x",
		},
		{
			name:   "comments and event fields",
			chunks: []string{": keepalive\nevent: message\nid: 3\ndata: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n"},
			want:   "x",
		},
		{
			name:   "role-only delta",
			chunks: []string{"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n"},
			want:   "",
		},
		{
			name:   "after done",
			chunks: []string{"data: [DONE]\ndata: {\"choices\":[{\"delta\":{\"content\":\"late\"}}]}\n"},
			want:   "",
		},
		{
			name:   "unterminated last line",
			chunks: []string{"data: {\"choices\":[{\"delta\":{\"content\":\"tail\"}}]}"},
			want:   "tail",
		},
		{
			name:   "whitespace token kept",
			chunks: []string{"data: {\"choices\":[{\"delta\":{\"content\":\" \"}}]}\n"},
			want:   " ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, feedAll(NewDecoder(nil), tt.chunks...))
		})
	}
}

func TestDecoderByteAtATime(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"he\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"llo\"}}]}\n" +
		"data: [DONE]\n"

	var chunks []string
	for i := range len(stream) {
		chunks = append(chunks, stream[i:i+1])
	}
	assert.Equal(t, "hello", feedAll(NewDecoder(nil), chunks...))
}
