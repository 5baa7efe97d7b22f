// Package snapshot encodes one index (definition plus vector set) as a single
// compressed JSON document for export and import.
//
// The stream is a zstd or LZ4 frame; Read tells them apart by the frame magic.
// The decompressed payload is the encoded document followed by a newline and
// the CRC32C of the document as eight hex digits.
package snapshot

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/pinelocal/codec"
	"github.com/hupe1980/pinelocal/internal/hash"
	"github.com/hupe1980/pinelocal/model"
)

// Version is the snapshot format version written by Write.
const Version = 1

var (
	// ErrUnsupportedVersion is returned when a snapshot has an unknown version.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrInvalid is returned when a snapshot cannot be decoded or is inconsistent.
	ErrInvalid = errors.New("snapshot: invalid")
)

// InvalidError describes why a snapshot was rejected.
type InvalidError struct {
	Reason string
	Err    error
}

func (e *InvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot: invalid: %s: %v", e.Reason, e.Err)
	}
	return "snapshot: invalid: " + e.Reason
}

func (e *InvalidError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalid.
func (e *InvalidError) Is(target error) bool { return target == ErrInvalid }

// Document is the decoded snapshot payload.
type Document struct {
	Version int                   `json:"version"`
	Index   model.IndexDefinition `json:"index"`
	Vectors []model.Vector        `json:"vectors"`
}

// Compression selects the frame format Write produces.
type Compression string

const (
	// CompressionZstd favors size.
	CompressionZstd Compression = "zstd"
	// CompressionLZ4 favors speed.
	CompressionLZ4 Compression = "lz4"
)

// ParseCompression converts a name into a Compression.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case CompressionZstd, CompressionLZ4:
		return c, nil
	default:
		return "", fmt.Errorf("snapshot: unsupported compression %q (want zstd or lz4)", s)
	}
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// DefaultMaxBytes is the default limit on the decompressed size of a snapshot.
const DefaultMaxBytes = 1 << 30

// Options configures snapshot encoding.
type Options struct {
	Codec       codec.Codec
	Compression Compression
	Level       zstd.EncoderLevel

	// MaxBytes bounds the decompressed payload Read accepts.
	// If <= 0, DefaultMaxBytes is used.
	MaxBytes int64
}

// DefaultOptions uses codec.Default and zstd at its default level.
var DefaultOptions = Options{
	Codec:       codec.Default,
	Compression: CompressionZstd,
	Level:       zstd.SpeedDefault,
	MaxBytes:    DefaultMaxBytes,
}

func resolve(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Compression == "" {
		opts.Compression = CompressionZstd
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return opts
}

func newCompressor(w io.Writer, opts Options) (io.WriteCloser, error) {
	switch opts.Compression {
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(opts.Level))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("snapshot: unsupported compression %q", opts.Compression)
	}
}

// newDecompressor picks the decoder from the frame magic of r.
func newDecompressor(r io.Reader, opts Options) (io.Reader, func(), error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil {
		return nil, nil, &InvalidError{Reason: "header", Err: err}
	}
	switch {
	case bytes.Equal(magic, zstdMagic):
		dec, err := zstd.NewReader(br, zstd.WithDecoderMaxMemory(uint64(opts.MaxBytes)))
		if err != nil {
			return nil, nil, &InvalidError{Reason: "decompressor", Err: err}
		}
		return dec, dec.Close, nil
	case bytes.Equal(magic, lz4Magic):
		return lz4.NewReader(br), func() {}, nil
	default:
		return nil, nil, &InvalidError{Reason: fmt.Sprintf("unknown frame magic %x", magic)}
	}
}

// Write encodes def and set to w.
func Write(w io.Writer, def model.IndexDefinition, set model.VectorSet, optFns ...func(o *Options)) error {
	opts := resolve(optFns)

	vectors := set.Vectors
	if vectors == nil {
		vectors = []model.Vector{}
	}
	data, err := opts.Codec.Marshal(Document{Version: Version, Index: def, Vectors: vectors})
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	enc, err := newCompressor(w, opts)
	if err != nil {
		return fmt.Errorf("snapshot: compressor: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := io.WriteString(enc, "\n"+hash.Format(hash.CRC32C(data))); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Read decodes a snapshot from r. Every vector must match the index dimension
// and carry a non-empty id. Payloads larger than Options.MaxBytes are rejected
// without being buffered in full.
func Read(r io.Reader, optFns ...func(o *Options)) (Document, error) {
	opts := resolve(optFns)

	dec, done, err := newDecompressor(r, opts)
	if err != nil {
		return Document{}, err
	}
	defer done()

	raw, err := io.ReadAll(io.LimitReader(dec, opts.MaxBytes+1))
	if err != nil {
		return Document{}, &InvalidError{Reason: "decompress", Err: err}
	}
	if int64(len(raw)) > opts.MaxBytes {
		return Document{}, &InvalidError{Reason: fmt.Sprintf("decompressed size exceeds %d bytes", opts.MaxBytes)}
	}
	data, err := verify(raw)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := opts.Codec.Unmarshal(data, &doc); err != nil {
		return Document{}, &InvalidError{Reason: "decode", Err: err}
	}
	if doc.Version != Version {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.Vectors == nil {
		doc.Vectors = []model.Vector{}
	}
	for i, v := range doc.Vectors {
		if v.ID == "" {
			return Document{}, &InvalidError{Reason: fmt.Sprintf("vector %d has no id", i)}
		}
		if len(v.Values) != doc.Index.Dimension {
			return Document{}, &InvalidError{
				Reason: fmt.Sprintf("vector %q has dimension %d, index has %d", v.ID, len(v.Values), doc.Index.Dimension),
			}
		}
	}
	return doc, nil
}

// verify splits the checksum trailer off raw and checks it.
func verify(raw []byte) ([]byte, error) {
	i := bytes.LastIndexByte(raw, '\n')
	if i < 0 {
		return nil, &InvalidError{Reason: "missing checksum"}
	}
	data, trailer := raw[:i], string(raw[i+1:])

	want, err := hash.Parse(trailer)
	if err != nil {
		return nil, &InvalidError{Reason: "checksum", Err: err}
	}
	if got := hash.CRC32C(data); got != want {
		return nil, &InvalidError{
			Reason: fmt.Sprintf("checksum mismatch: have %s, want %s", hash.Format(got), trailer),
		}
	}
	return data, nil
}
