package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Of_isDeterministic(t *testing.T) {
	assert := assert.New(t)

	a := Of("class FooGenerator: pass")
	b := Of("class FooGenerator: pass")
	assert.Equal(a, b)
}

func Test_Of_differsByInput(t *testing.T) {
	assert := assert.New(t)

	a := Of("one")
	b := Of("two")
	assert.NotEqual(a, b)
}

func Test_Of_isHexEncoded64Chars(t *testing.T) {
	assert := assert.New(t)

	sum := Of("anything")
	assert.Len(sum, 64, "BLAKE2b-256 hex-encodes to 64 characters")
	for _, r := range sum {
		assert.True((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'), "unexpected hex digit %q", r)
	}
}

func Test_Of_emptyInput(t *testing.T) {
	assert := assert.New(t)

	sum := Of("")
	assert.Len(sum, 64)
}
