package booking

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmationCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := NewConfirmationCode()
		assert.GreaterOrEqual(t, len(code), 4)
		assert.LessOrEqual(t, len(code), 5)
		n, err := strconv.ParseUint(code, 16, 64)
		require.NoError(t, err, "code %q is not hex", code)
		assert.Less(t, n, uint64(1000000))
	}
}
