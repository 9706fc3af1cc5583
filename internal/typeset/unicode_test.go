package typeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnicode_Typeset(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "superscript digit", source: "x^2", want: "x²"},
		{name: "braced superscript", source: "x^{10}", want: "x¹⁰"},
		{name: "subscript", source: "a_1 + a_{n}", want: "a₁ + aₙ"},
		{name: "superscript without glyph", source: "e^{i\\pi}", want: "e^(iπ)"},
		{name: "single letter without glyph", source: "2^k", want: "2^k"},
		{name: "fraction", source: `\frac{1}{2}`, want: "1/2"},
		{name: "compound fraction", source: `\frac{x+1}{2y}`, want: "(x+1)/(2y)"},
		{name: "square root", source: `\sqrt{x}`, want: "√x"},
		{name: "greek and operators", source: `2\pi r \cdot h \times 3`, want: "2π r · h × 3"},
		{name: "math delimiters", source: `$x \leq 5$`, want: "x ≤ 5"},
		{name: "text", source: `\text{speed} = 5`, want: "speed = 5"},
		{name: "plain group", source: "{x} + {y}", want: "x + y"},
		{name: "left right", source: `\left(x\right)`, want: "(x)"},
		{name: "escaped brace", source: `\{1, 2\}`, want: "{1, 2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unicode{}.Typeset(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnicode_TypesetMalformed(t *testing.T) {
	for _, source := range []string{
		`\frac{1}{2`,
		"x}",
		"x^",
		`\unknowncommand`,
		`x\`,
		`\sqrt`,
		"x^}",
		"$$",
		"$ $",
		"{}",
	} {
		t.Run(source, func(t *testing.T) {
			_, err := Unicode{}.Typeset(source)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
