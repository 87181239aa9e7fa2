package testutil

import "fmt"

// KeyUniverseSize bounds the distinct keys a generated run touches.
//
// A small universe makes collisions between operations likely: inserts hit
// existing keys, erases hit live entries, and reinserted keys land on
// tombstoned slots. A large universe would mostly exercise the miss paths.
const KeyUniverseSize = 32

// GenKey returns the idx-th key of the generator's key universe.
func GenKey(idx int) string {
	return fmt.Sprintf("key-%02d", idx%KeyUniverseSize)
}

// GenValue returns a short printable value derived from n.
func GenValue(n int) string {
	return fmt.Sprintf("v%d", n)
}

// OpGenerator decodes a bounded operation stream from fuzz bytes.
//
// The mix is weighted toward mutation so tables fill, accumulate tombstones,
// and rebuild within one run. Clear and Clone are gated behind an extra byte
// so they stay rare enough not to flatten the state every few steps.
type OpGenerator struct {
	stream *ByteStream
}

// NewOpGenerator returns a generator over the given fuzz bytes.
func NewOpGenerator(data []byte) *OpGenerator {
	return &OpGenerator{stream: NewByteStream(data)}
}

// HasMore reports whether the underlying stream has unread bytes.
func (g *OpGenerator) HasMore() bool {
	return g.stream.HasMore()
}

// NextOp decodes one operation.
func (g *OpGenerator) NextOp() Operation {
	key := GenKey(g.stream.NextInt(KeyUniverseSize))

	switch g.stream.NextInt(12) {
	case 0, 1, 2:
		return OpInsert{Key: key, Value: GenValue(g.stream.NextInt(100))}
	case 3, 4:
		return OpErase{Key: key}
	case 5:
		return OpGet{Key: key}
	case 6:
		return OpAt{Key: key}
	case 7:
		return OpContains{Key: key}
	case 8:
		return OpRef{Key: key}
	case 9:
		return OpRefSet{Key: key, Value: GenValue(g.stream.NextInt(100))}
	case 10:
		if g.stream.NextInt(4) == 0 {
			return OpClone{}
		}

		return OpLen{}
	default:
		if g.stream.NextInt(8) == 0 {
			return OpClear{}
		}

		return OpInsert{Key: key, Value: GenValue(g.stream.NextInt(100))}
	}
}
