package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	s := "test"
	p := To(s)
	assert.Equal(t, s, *p)
	assert.NotSame(t, &s, p, "points at a copy")

	type priority string
	assert.Equal(t, priority("high"), *To(priority("high")))
}

func TestDeref(t *testing.T) {
	assert.Equal(t, 42, Deref(To(42)))
	assert.Equal(t, "", Deref[string](nil))
	assert.False(t, Deref[bool](nil))
}

func TestNonZero(t *testing.T) {
	assert.False(t, NonZero[string](nil))
	assert.False(t, NonZero(To("")))
	assert.True(t, NonZero(To("x")))
	assert.False(t, NonZero(To(0)))
}
