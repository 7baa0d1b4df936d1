// Package quantize converts float stereo blocks into interleaved signed
// 16-bit PCM.
//
// Samples are scaled by math.MaxInt16 and truncated toward zero. Values
// outside of [-1, 1] are not clamped: the scaled value is truncated to 32
// bits and then wrapped into 16 bits, the same result a native fixed-point
// cast produces. Consumers that need clamping have to clamp before the
// signal reaches this package.
package quantize

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

const (
	// NumChannels is the number of interleaved channels.
	NumChannels = 2
	// BytesPerSample is the size of one quantized sample.
	BytesPerSample = 2
	// FrameSize is the size of one interleaved L,R pair.
	FrameSize = NumChannels * BytesPerSample
	// BitDepth of quantized samples.
	BitDepth = 16
)

// scale is kept in single precision so the product is rounded the same
// way the host computes it.
const scale float32 = math.MaxInt16

// ByteOrder of the produced stream. It's the byte order of the platform.
var ByteOrder = binary.NativeEndian

// Size returns the length in bytes of a quantized block of n frames.
func Size(n int) int {
	return n * FrameSize
}

// Sample quantizes a single sample.
func Sample(x float32) int16 {
	return int16(int32(scale * x))
}

// Quantize interleaves left and right into dst as L,R,L,R... int16 pairs.
// dst is reused if it has enough capacity, otherwise a new slice is
// allocated. The returned slice is always Size(len(left)) bytes long.
// Quantize panics if channels have different length.
func Quantize(dst []byte, left, right []float32) []byte {
	if len(left) != len(right) {
		panic(fmt.Sprintf("quantize: channel length mismatch: left %d right %d", len(left), len(right)))
	}
	size := Size(len(left))
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	for i := range left {
		ByteOrder.PutUint16(dst[i*FrameSize:], uint16(Sample(left[i])))
		ByteOrder.PutUint16(dst[i*FrameSize+BytesPerSample:], uint16(Sample(right[i])))
	}
	return dst
}

// Deinterleave splits a quantized buffer back into channels. Trailing bytes
// that don't form a full frame are ignored.
func Deinterleave(b []byte) (left, right []int16) {
	n := len(b) / FrameSize
	left = make([]int16, n)
	right = make([]int16, n)
	for i := 0; i < n; i++ {
		left[i] = int16(ByteOrder.Uint16(b[i*FrameSize:]))
		right[i] = int16(ByteOrder.Uint16(b[i*FrameSize+BytesPerSample:]))
	}
	return
}

// AsIntBuffer wraps quantized data into audio.IntBuffer so it can be passed
// to go-audio encoders.
func AsIntBuffer(b []byte, sampleRate int) *audio.IntBuffer {
	n := len(b) / BytesPerSample
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: NumChannels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: BitDepth,
		Data:           make([]int, n),
	}
	for i := range ib.Data {
		ib.Data[i] = int(int16(ByteOrder.Uint16(b[i*BytesPerSample:])))
	}
	return ib
}
