package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"international with plus", "+254712345678", "254712345678"},
		{"local with leading zero", "0712345678", "254712345678"},
		{"bare subscriber number", "712345678", "254712345678"},
		{"already normalized", "254712345678", "254712345678"},
		{"surrounding whitespace", " 0712345678 ", "254712345678"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.in))
		})
	}
}
