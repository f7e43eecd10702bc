package imgutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHeader(t *testing.T) {
	pad := func(b []byte) []byte {
		out := make([]byte, HeaderSize)
		copy(out, b)
		return out
	}

	tests := map[string]struct {
		header  []byte
		expKind Kind
		expErr  bool
	}{
		"png": {
			header:  pad([]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}),
			expKind: KindPNG,
		},
		"jpeg": {
			header:  pad([]byte{0xff, 0xd8, 0xff, 0xe0}),
			expKind: KindJPEG,
		},
		"tiff little endian": {
			header:  pad([]byte{0x49, 0x49, 0x2a, 0x00}),
			expKind: KindTIFF,
		},
		"tiff big endian": {
			header:  pad([]byte{0x4d, 0x4d, 0x00, 0x2a}),
			expKind: KindTIFF,
		},
		"gif": {
			header:  pad([]byte("GIF89a")),
			expKind: KindGIF,
		},
		"bmp": {
			header:  pad([]byte("BM")),
			expKind: KindBMP,
		},
		"webp": {
			header:  []byte("RIFF\x10\x00\x00\x00WEBP"),
			expKind: KindWEBP,
		},
		"riff that is not webp": {
			header:  []byte("RIFF\x10\x00\x00\x00WAVE"),
			expKind: KindUnknown,
		},
		"ico": {
			header:  pad([]byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00}),
			expKind: KindICO,
		},
		"ico without entries is unknown": {
			header:  pad([]byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x00}),
			expKind: KindUnknown,
		},
		"pdf": {
			header:  pad([]byte("%PDF-1.4")),
			expKind: KindPDF,
		},
		"text": {
			header:  pad([]byte("hello world")),
			expKind: KindUnknown,
		},
		"short header should fail": {
			header: []byte{0x89, 0x50},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			kind, err := DetectHeader(test.header)
			if test.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expKind, kind)
		})
	}
}

func TestSniffReaderShortInput(t *testing.T) {
	kind, err := SniffReader(bytes.NewReader([]byte("BM")))
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, kind)
}
