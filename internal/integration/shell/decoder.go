package shell

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns a stream of output chunks into valid UTF-8. Invalid bytes
// become U+FFFD; a multi-byte sequence split across chunks is held back
// until the next chunk completes it.
type Decoder struct {
	t       transform.Transformer
	pending []byte
}

// NewDecoder creates a UTF-8 stream decoder.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode returns the text decodable from chunk plus any held-back bytes.
func (d *Decoder) Decode(chunk []byte) string {
	return d.decode(chunk, false)
}

// Flush decodes whatever is still held back, replacing an incomplete
// sequence with U+FFFD.
func (d *Decoder) Flush() string {
	return d.decode(nil, true)
}

// Pending returns the number of held-back bytes.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := append(d.pending, chunk...)
	d.pending = nil
	if len(src) == 0 {
		return ""
	}

	// Every source byte expands to at most one 3-byte replacement rune.
	dst := make([]byte, 3*len(src))
	nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
	if errors.Is(err, transform.ErrShortSrc) {
		d.pending = append([]byte(nil), src[nSrc:]...)
	}
	if atEOF {
		d.t.Reset()
	}
	return string(dst[:nDst])
}
