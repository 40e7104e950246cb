package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 19.99, Round2(19.99))
	assert.Equal(t, 20.0, Round2(19.995))
	assert.Equal(t, 59.97, Round2(3*19.99))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 1.0, Round2(0.999))
	assert.Equal(t, -2.5, Round2(-2.499))
}
