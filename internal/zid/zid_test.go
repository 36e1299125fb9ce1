package zid_test

import (
	"testing"

	"github.com/jito-labs/zenoh-router/internal/zid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyAndOversize(t *testing.T) {
	_, err := zid.New(nil)
	require.ErrorIs(t, err, zid.ErrEmpty)

	_, err = zid.New(make([]byte, 17))
	require.ErrorIs(t, err, zid.ErrTooLong)
}

func TestRoundTripHex(t *testing.T) {
	id := zid.MustNew([]byte{0xde, 0xad, 0xbe, 0xef})
	s := id.String()
	assert.Equal(t, "deadbeef", s)

	parsed, err := zid.Parse(s)
	require.NoError(t, err)
	assert.True(t, id.Equal(parsed))
}

func TestCompareTotalOrder(t *testing.T) {
	a := zid.MustNew([]byte{0x01})
	b := zid.MustNew([]byte{0x02})
	c := zid.MustNew([]byte{0x01, 0x00})

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Zero(t, a.Compare(a))
	// shorter ids sort first regardless of byte value
	assert.Negative(t, a.Compare(c))
}

func TestEqualDistinguishesLength(t *testing.T) {
	a := zid.MustNew([]byte{0x01})
	b := zid.MustNew([]byte{0x01, 0x00})
	assert.False(t, a.Equal(b))
}
