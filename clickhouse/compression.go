package clickhouse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is an HTTP content coding understood by ClickHouse.
type Compression string

// Supported codecs. The value is the token sent in Accept-Encoding and
// Content-Encoding.
const (
	CompressionNone    Compression = ""
	CompressionGzip    Compression = "gzip"
	CompressionDeflate Compression = "deflate"
	CompressionZstd    Compression = "zstd"
	CompressionLZ4     Compression = "lz4"
	CompressionSnappy  Compression = "snappy"

	defaultCompression = CompressionGzip
)

// ParseCompression returns the codec for an encoding token such as "gzip".
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(name))); c {
	case CompressionNone, CompressionGzip, CompressionDeflate, CompressionZstd, CompressionLZ4, CompressionSnappy:
		return c, nil
	case "identity":
		return CompressionNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
	}
}

func (c Compression) String() string {
	if c == CompressionNone {
		return "none"
	}
	return string(c)
}

func compressPayload(payload []byte, compression Compression) ([]byte, error) {
	var buf bytes.Buffer
	switch compression {
	case CompressionNone:
		return payload, nil
	case CompressionGzip:
		writer := gzip.NewWriter(&buf)
		if err := writeAndClose(writer, payload); err != nil {
			return nil, fmt.Errorf("gzip compress failed: %w", err)
		}
	case CompressionDeflate:
		writer := zlib.NewWriter(&buf)
		if err := writeAndClose(writer, payload); err != nil {
			return nil, fmt.Errorf("deflate compress failed: %w", err)
		}
	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd compress failed: %w", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(payload, nil), nil
	case CompressionLZ4:
		writer := lz4.NewWriter(&buf)
		if err := writeAndClose(writer, payload); err != nil {
			return nil, fmt.Errorf("lz4 compress failed: %w", err)
		}
	case CompressionSnappy:
		return snappy.Encode(nil, payload), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, string(compression))
	}
	return buf.Bytes(), nil
}

func writeAndClose(w io.WriteCloser, payload []byte) error {
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return w.Close()
}

// decompressPayload decodes a response body according to its Content-Encoding.
func decompressPayload(payload []byte, contentEncoding string) ([]byte, error) {
	compression, err := ParseCompression(contentEncoding)
	if err != nil {
		return nil, err
	}
	switch compression {
	case CompressionNone:
		return payload, nil
	case CompressionGzip:
		reader, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress failed: %w", err)
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case CompressionDeflate:
		reader, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("deflate decompress failed: %w", err)
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case CompressionZstd:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress failed: %w", err)
		}
		defer decoder.Close()
		return decoder.DecodeAll(payload, nil)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
	case CompressionSnappy:
		return snappy.Decode(nil, payload)
	}
	return payload, nil
}
