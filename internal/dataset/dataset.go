// Package dataset reads partner records from files and writes commission documents.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/wolfeidau/commissions/internal/models"
	"gopkg.in/yaml.v3"
)

// Format is the document encoding of a partner file.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Compression wraps the document encoding.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

var (
	// ErrUnknownFormat indicates a format that can't be inferred or isn't supported
	ErrUnknownFormat = errors.New("unknown partner file format")
	// ErrMalformedDocument indicates a document that isn't a list of partner objects
	ErrMalformedDocument = errors.New("malformed partner document")
)

// Detect infers the format and compression from a file name such as
// partners.json, partners.yaml.gz or partners.json.zst.
func Detect(path string) (Format, Compression) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	switch {
	case strings.HasSuffix(name, ".gz"):
		compression = CompressionGzip
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		compression = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compression
	case ".yaml", ".yml":
		return FormatYAML, compression
	default:
		return FormatAuto, compression
	}
}

// ReadFile loads partner records from path. An explicit format overrides the
// file extension; "-" reads stdin.
func ReadFile(path string, format Format) ([]models.PartnerRecord, error) {
	detected, compression := Detect(path)
	if format == "" || format == FormatAuto {
		format = detected
	}

	var r io.Reader
	if path == Stdio {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open partner file: %w", err)
		}
		defer f.Close()
		r = f
	}

	rc, err := decompress(r, compression)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Decode(rc, format)
}

func decompress(r io.Reader, compression Compression) (io.ReadCloser, error) {
	switch compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// Decode parses a list of partner records. FormatAuto sniffs the first
// non-space byte: '[' is JSON, anything else is YAML.
func Decode(r io.Reader, format Format) ([]models.PartnerRecord, error) {
	br := bufio.NewReader(r)

	if format == "" || format == FormatAuto {
		format = sniff(br)
	}

	var records []models.PartnerRecord
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(br)
		dec.UseNumber()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON: %w", ErrMalformedDocument, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(br).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrMalformedDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return records, nil
}

func sniff(br *bufio.Reader) Format {
	for {
		b, err := br.Peek(1)
		if err != nil || len(b) == 0 {
			return FormatJSON
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			if b[0] == '[' {
				return FormatJSON
			}
			return FormatYAML
		}
		if _, err := br.Discard(1); err != nil {
			return FormatJSON
		}
	}
}

// Encode writes v as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode commissions: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write commissions: %w", err)
	}
	return nil
}

// WriteFile encodes v to path; "-" writes stdout.
func WriteFile(path string, v any) error {
	if path == Stdio {
		return Encode(os.Stdout, v)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return err
	}

	// #nosec G306 - commission documents are not secret
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
