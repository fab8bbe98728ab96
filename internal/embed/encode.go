package embed

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// DefaultThreshold is the size at or below which files are embedded as is.
const DefaultThreshold = 100

// CompressedSuffix marks the array and length constants of gzipped payloads.
const CompressedSuffix = "_gz"

// Options controls encoding.
type Options struct {
	Compress bool
	// Threshold is the largest size embedded uncompressed. Zero means
	// DefaultThreshold.
	Threshold int
}

// DefaultOptions enables compression with the default threshold.
func DefaultOptions() Options {
	return Options{Compress: true, Threshold: DefaultThreshold}
}

func (o Options) threshold() int {
	if o.Threshold <= 0 {
		return DefaultThreshold
	}
	return o.Threshold
}

// Resource is an encoded asset ready to be rendered into the header.
type Resource struct {
	Asset
	// Ident names the array and length constants; it carries
	// CompressedSuffix when Compressed is set.
	Ident        string `json:"ident"`
	MIME         string `json:"mime"`
	Compressed   bool   `json:"compressed"`
	OriginalSize int    `json:"original_size"`
	Data         []byte `json:"-"`
}

// Len is the length of the embedded payload.
func (r *Resource) Len() int { return len(r.Data) }

var mimeTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".ico":  "image/x-icon",
}

// MIMEType maps a file name to its MIME type by extension only.
func MIMEType(name string) string {
	if m, ok := mimeTypes[strings.ToLower(path.Ext(name))]; ok {
		return m
	}
	return "application/octet-stream"
}

// Compress gzips data at the best compression level. The gzip header
// carries no name or timestamp, so equal input gives equal output.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode reads file and prepares it for embedding as a.
func Encode(file string, a Asset, opts Options) (*Resource, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.Path, err)
	}
	return EncodeBytes(data, a, opts)
}

// EncodeBytes is Encode for content already in memory.
func EncodeBytes(data []byte, a Asset, opts Options) (*Resource, error) {
	r := &Resource{
		Asset:        a,
		Ident:        a.Role.Ident(),
		MIME:         MIMEType(a.Path),
		OriginalSize: len(data),
		Data:         data,
	}
	if opts.Compress && len(data) > opts.threshold() {
		gz, err := Compress(data)
		if err != nil {
			return nil, fmt.Errorf("compress %s: %w", a.Path, err)
		}
		r.Data = gz
		r.Ident += CompressedSuffix
		r.Compressed = true
	}
	return r, nil
}
