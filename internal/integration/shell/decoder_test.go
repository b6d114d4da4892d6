package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoderPassesValidText(t *testing.T) {
	d := NewDecoder()
	assert.Equal(t, "hello wörld\n", d.Decode([]byte("hello wörld\n")))
	assert.Zero(t, d.Pending())
	assert.Equal(t, "", d.Decode(nil))
}

func TestDecoderReplacesInvalidBytes(t *testing.T) {
	d := NewDecoder()
	assert.Equal(t, "a�b", d.Decode([]byte{'a', 0xff, 'b'}))
}

func TestDecoderCarriesSplitSequence(t *testing.T) {
	euro := []byte("€") // e2 82 ac
	d := NewDecoder()

	assert.Equal(t, "x", d.Decode(append([]byte("x"), euro[:2]...)))
	assert.Equal(t, 2, d.Pending())
	assert.Equal(t, "€y", d.Decode(append(euro[2:], 'y')))
	assert.Zero(t, d.Pending())
}

func TestDecoderFlushReplacesTruncatedTail(t *testing.T) {
	d := NewDecoder()
	assert.Equal(t, "", d.Decode([]byte("€")[:1]))
	assert.Equal(t, "�", d.Flush())
	assert.Equal(t, "", d.Flush())
}
