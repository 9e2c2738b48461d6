package classicbloom

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exrWriter builds minimal scanline files for decoder tests.
type exrWriter struct {
	buf bytes.Buffer
}

func (w *exrWriter) u32(v uint32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *exrWriter) u64(v uint64) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *exrWriter) i32(v int32)  { binary.Write(&w.buf, binary.LittleEndian, int32(v)) }
func (w *exrWriter) str(s string) { w.buf.WriteString(s); w.buf.WriteByte(0) }

func (w *exrWriter) attr(name, typ string, payload []byte) {
	w.str(name)
	w.str(typ)
	w.i32(int32(len(payload)))
	w.buf.Write(payload)
}

func exrChannelList(names []string, pixelType int32) []byte {
	var b bytes.Buffer
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte(0)
		binary.Write(&b, binary.LittleEndian, pixelType)
		b.Write([]byte{0, 0, 0, 0}) // pLinear + reserved
		binary.Write(&b, binary.LittleEndian, int32(1))
		binary.Write(&b, binary.LittleEndian, int32(1))
	}
	b.WriteByte(0)
	return b.Bytes()
}

func exrBox2i(xMin, yMin, xMax, yMax int32) []byte {
	var b bytes.Buffer
	for _, v := range []int32{xMin, yMin, xMax, yMax} {
		binary.Write(&b, binary.LittleEndian, v)
	}
	return b.Bytes()
}

// buildEXR assembles an uncompressed float32 scanline file. pixels holds
// per-channel scanlines indexed [y][channel][x].
func buildEXR(t *testing.T, names []string, width, height int, pixels [][][]float32) []byte {
	t.Helper()

	var w exrWriter
	w.u32(exrMagic)
	w.u32(2) // version, scanline
	w.attr("channels", "chlist", exrChannelList(names, exrPixelFloat))
	w.attr("compression", "compression", []byte{exrCompressionNone})
	w.attr("dataWindow", "box2i", exrBox2i(0, 0, int32(width-1), int32(height-1)))
	w.attr("displayWindow", "box2i", exrBox2i(0, 0, int32(width-1), int32(height-1)))
	w.buf.WriteByte(0) // end of header

	// One offset per scanline, filled after layout is known.
	offsetPos := w.buf.Len()
	for y := 0; y < height; y++ {
		w.u64(0)
	}

	offsets := make([]uint64, height)
	for y := 0; y < height; y++ {
		offsets[y] = uint64(w.buf.Len())
		w.i32(int32(y))
		w.i32(int32(width * len(names) * 4))
		for c := range names {
			for x := 0; x < width; x++ {
				w.u32(math.Float32bits(pixels[y][c][x]))
			}
		}
	}

	out := w.buf.Bytes()
	for y, off := range offsets {
		binary.LittleEndian.PutUint64(out[offsetPos+y*8:], off)
	}
	return out
}

func TestDecodeEXRUncompressedRGB(t *testing.T) {
	// Channels stored B, G, R as OpenEXR sorts them.
	pixels := [][][]float32{
		{ // y=0: B, G, R lines
			{0.25, 0.5},
			{1.0, 2.0},
			{4.0, 8.0},
		},
		{ // y=1
			{0, 0.125},
			{0, 16.0},
			{0, 100.0},
		},
	}
	data := buildEXR(t, []string{"B", "G", "R"}, 2, 2, pixels)

	img, err := DecodeEXR(data)
	require.NoError(t, err)
	require.Equal(t, Rect{W: 2, H: 2}, img.Rect)
	require.Equal(t, 2, img.ExtentW)

	assert.Equal(t, rgb{4.0, 1.0, 0.25}, img.at(0, 0))
	assert.Equal(t, rgb{8.0, 2.0, 0.5}, img.at(1, 0))
	assert.Equal(t, rgb{0, 0, 0}, img.at(0, 1))
	assert.Equal(t, rgb{100.0, 16.0, 0.125}, img.at(1, 1))
}

func TestDecodeEXRLuminanceOnly(t *testing.T) {
	pixels := [][][]float32{
		{{0.75, 3.0}},
	}
	data := buildEXR(t, []string{"Y"}, 2, 1, pixels)

	img, err := DecodeEXR(data)
	require.NoError(t, err)
	assert.Equal(t, rgb{0.75, 0.75, 0.75}, img.at(0, 0))
	assert.Equal(t, rgb{3.0, 3.0, 3.0}, img.at(1, 0))
}

func TestDecodeEXRZipsScanline(t *testing.T) {
	// Hand-pack a single ZIPS scanline: shuffle bytes, delta-encode, deflate.
	const width = 3
	values := []float32{0.5, 1.5, -2.0}

	raw := make([]byte, width*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}

	n := len(raw) / 2
	shuffled := make([]byte, len(raw))
	for i := 0; i < n; i++ {
		shuffled[i] = raw[2*i]
		shuffled[n+i] = raw[2*i+1]
	}
	for i := len(shuffled) - 1; i > 0; i-- {
		shuffled[i] = byte(int(shuffled[i]) - int(shuffled[i-1]) + 128)
	}
	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	_, err := zw.Write(shuffled)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var w exrWriter
	w.u32(exrMagic)
	w.u32(2)
	w.attr("channels", "chlist", exrChannelList([]string{"G"}, exrPixelFloat))
	w.attr("compression", "compression", []byte{exrCompressionZips})
	w.attr("dataWindow", "box2i", exrBox2i(0, 0, width-1, 0))
	w.buf.WriteByte(0)

	offsetPos := w.buf.Len()
	w.u64(0)
	offset := uint64(w.buf.Len())
	w.i32(0)
	w.i32(int32(packed.Len()))
	w.buf.Write(packed.Bytes())

	data := w.buf.Bytes()
	binary.LittleEndian.PutUint64(data[offsetPos:], offset)

	img, err := DecodeEXR(data)
	require.NoError(t, err)
	for i, v := range values {
		assert.Equal(t, v, img.at(i, 0).g, "pixel %d", i)
	}
}

func TestDecodeEXRHalfPixels(t *testing.T) {
	var w exrWriter
	w.u32(exrMagic)
	w.u32(2)
	w.attr("channels", "chlist", exrChannelList([]string{"Y"}, exrPixelHalf))
	w.attr("compression", "compression", []byte{exrCompressionNone})
	w.attr("dataWindow", "box2i", exrBox2i(0, 0, 1, 0))
	w.buf.WriteByte(0)

	offsetPos := w.buf.Len()
	w.u64(0)
	offset := uint64(w.buf.Len())
	w.i32(0)
	w.i32(4)
	// 1.0 and 0.5 in binary16.
	binary.Write(&w.buf, binary.LittleEndian, uint16(0x3C00))
	binary.Write(&w.buf, binary.LittleEndian, uint16(0x3800))

	data := w.buf.Bytes()
	binary.LittleEndian.PutUint64(data[offsetPos:], offset)

	img, err := DecodeEXR(data)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), img.at(0, 0).r)
	assert.Equal(t, float32(0.5), img.at(1, 0).r)
}

func TestDecodeEXRRejects(t *testing.T) {
	valid := buildEXR(t, []string{"Y"}, 1, 1, [][][]float32{{{1}}})

	badMagic := append([]byte(nil), valid...)
	badMagic[0]++
	_, err := DecodeEXR(badMagic)
	assert.Error(t, err)

	tiled := append([]byte(nil), valid...)
	tiled[5] |= 0x02 // tile bit in the version field
	_, err = DecodeEXR(tiled)
	assert.Error(t, err)

	_, err = DecodeEXR(valid[:10])
	assert.Error(t, err)

	var w exrWriter
	w.u32(exrMagic)
	w.u32(2)
	w.attr("compression", "compression", []byte{exrCompressionNone})
	w.attr("dataWindow", "box2i", exrBox2i(0, 0, 0, 0))
	w.buf.WriteByte(0)
	_, err = DecodeEXR(w.buf.Bytes())
	assert.ErrorContains(t, err, "channels")
}

func TestHalfToFloat32(t *testing.T) {
	cases := []struct {
		in   uint16
		want float32
	}{
		{0x0000, 0},
		{0x3C00, 1},
		{0x4000, 2},
		{0xC000, -2},
		{0x3800, 0.5},
		{0x0001, 5.960464477539063e-08}, // smallest subnormal
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, halfToFloat32(tc.in), "0x%04X", tc.in)
	}
	assert.True(t, math.IsInf(float64(halfToFloat32(0x7C00)), 1))
	assert.True(t, math.IsNaN(float64(halfToFloat32(0x7E01))))
}
