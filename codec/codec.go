// Package codec implements the framed compression format used for
// compressed files: a small fixed header (magic, version, sizes,
// compression type) followed by a codec-specific body. RLE is the
// mandatory default body used by the coordinator's CompressFile and
// DecompressFile; GZIP, SNAPPY, and ZSTD are additive codec Kinds
// available to callers that pass that Kind to Compress, grounded on the
// teacher's codecs.NewCodecReader/NewCodecWriter codec-selection pattern.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/DataDog/zstd"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"

	"go.cachefs.dev/core/fserr"
)

// Kind selects which codec-specific body Compress produces. Decompress
// does not need the caller to remember which Kind was used: it dispatches
// on the header's compression-type byte.
type Kind byte

const (
	RLE Kind = iota
	GZIP
	SNAPPY
	ZSTD
)

const (
	magic      uint32 = 0x4D544653
	version    uint16 = 1
	headerSize        = 4 + 2 + 4 + 4 + 1
)

// header is the fixed-size preamble written before every codec body.
type header struct {
	originalSize   uint32
	compressedSize uint32
	kind           Kind
}

func (h header) encode() []byte {
	var buf = make([]byte, headerSize)
	binary.BigEndian.PutUint32(buf[0:4], magic)
	binary.BigEndian.PutUint16(buf[4:6], version)
	binary.BigEndian.PutUint32(buf[6:10], h.originalSize)
	binary.BigEndian.PutUint32(buf[10:14], h.compressedSize)
	buf[14] = byte(h.kind)
	return buf
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, fserr.New(fserr.Protocol, "codec.Decompress", "buffer too short for header")
	}
	if binary.BigEndian.Uint32(buf[0:4]) != magic {
		return header{}, fserr.New(fserr.Protocol, "codec.Decompress", "bad magic")
	}
	if binary.BigEndian.Uint16(buf[4:6]) != version {
		return header{}, fserr.New(fserr.Protocol, "codec.Decompress", "unsupported version")
	}
	return header{
		originalSize:   binary.BigEndian.Uint32(buf[6:10]),
		compressedSize: binary.BigEndian.Uint32(buf[10:14]),
		kind:           Kind(buf[14]),
	}, nil
}

// IsCompressed reports whether buf begins with the framed header's magic.
func IsCompressed(buf []byte) bool {
	return len(buf) >= 4 && binary.BigEndian.Uint32(buf[0:4]) == magic
}

// Compress frames data with the given Kind's body and the fixed header.
func Compress(kind Kind, data []byte) ([]byte, error) {
	var body []byte
	var err error

	switch kind {
	case RLE:
		body = rleCompress(data)
	case GZIP:
		body, err = gzipCompress(data)
	case SNAPPY:
		body = snappy.Encode(nil, data)
	case ZSTD:
		body, err = zstd.Compress(nil, data)
	default:
		return nil, fserr.New(fserr.Protocol, "codec.Compress", "unknown codec kind")
	}
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "codec.Compress", "compressing with kind %d", kind)
	}

	var h = header{originalSize: uint32(len(data)), compressedSize: uint32(len(body)), kind: kind}
	return append(h.encode(), body...), nil
}

// Decompress validates the header and dispatches on its compression-type
// byte, reconstructing the original bytes regardless of which Kind the
// caller expects.
func Decompress(buf []byte) ([]byte, error) {
	var h, err = decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	var body = buf[headerSize:]
	if uint32(len(body)) != h.compressedSize {
		return nil, fserr.New(fserr.Protocol, "codec.Decompress", "compressed size mismatch")
	}

	var out []byte
	switch h.kind {
	case RLE:
		out, err = rleDecompress(body, int(h.originalSize))
	case GZIP:
		out, err = gzipDecompress(body)
	case SNAPPY:
		out, err = snappy.Decode(nil, body)
	case ZSTD:
		out, err = zstd.Decompress(nil, body)
	default:
		return nil, fserr.New(fserr.Protocol, "codec.Decompress", "unknown codec kind in header")
	}
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.Internal, "codec.Decompress", "decompressing kind %d", h.kind)
	}
	if uint32(len(out)) != h.originalSize {
		return nil, fserr.New(fserr.Protocol, "codec.Decompress", "reconstructed size mismatch")
	}
	return out, nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w = gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(body []byte) ([]byte, error) {
	var r, err = gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
