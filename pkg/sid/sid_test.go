package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidMonotonic(t *testing.T) {
	s := NewSid()
	prev, err := s.GenUint64()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		id, err := s.GenUint64()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}

	str, err := s.GenString()
	require.NoError(t, err)
	assert.NotEmpty(t, str)
}
