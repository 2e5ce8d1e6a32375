package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps single line breaks",
			input: "1. What is 2+2?\nA. 3\nB. 4",
			want:  "1. What is 2+2?\nA. 3\nB. 4",
		},
		{
			name:  "removes exam banners",
			input: "WAEC PAST QUESTIONS\nOBJECTIVE TEST\n1. Define osmosis in plants.",
			want:  "1. Define osmosis in plants.",
		},
		{
			name:  "removes instruction, time and paper lines",
			input: "Instructions: Answer all questions\nTime: 2 hours\nPaper 2 Essay\n1. Define osmosis in plants.",
			want:  "1. Define osmosis in plants.",
		},
		{
			name:  "removes section banners",
			input: "1. Define osmosis.\nSECTION II\n2. Explain diffusion.",
			want:  "1. Define osmosis.\n\n2. Explain diffusion.",
		},
		{
			name:  "does not treat prose as a section banner",
			input: "1. Draw a cross section in detail.",
			want:  "1. Draw a cross section in detail.",
		},
		{
			name:  "collapses horizontal whitespace and trims lines",
			input: "  1.   What   is\t\tan atom?  \r\n  A.  proton ",
			want:  "1. What is an atom?\nA. proton",
		},
		{
			name:  "squeezes blank line runs",
			input: "1. First question here.\n\n\n\n\n2. Second question here.",
			want:  "1. First question here.\n\n2. Second question here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}
