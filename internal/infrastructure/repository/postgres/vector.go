package postgres

import (
	"strconv"
	"strings"
)

// vectorLiteral serializes an embedding into the store's vector column
// literal: bracketed, comma-separated, no internal whitespace. Integral
// values keep a trailing ".0" so the literal parses as a float list.
func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.Grow(len(embedding)*10 + 2)
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		s := strconv.FormatFloat(float64(v), 'f', -1, 32)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		b.WriteString(s)
	}
	b.WriteByte(']')
	return b.String()
}
