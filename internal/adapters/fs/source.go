// Package fs provides the file system adapters: the input opener with
// transparent gzip decompression and the append-only output sink.
package fs

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// OpenSource opens the input path for reading. Gzip-compressed input is
// detected by its magic bytes and decompressed transparently, so archived
// .mseed.gz files convert without an unpack step. The path "-" reads
// standard input.
func OpenSource(path string) (io.ReadCloser, error) {
	var raw io.ReadCloser
	if path == "-" {
		raw = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		raw = f
	}

	br := bufio.NewReaderSize(raw, 64<<10)
	magic, err := br.Peek(2)
	if err != nil && len(magic) < 2 {
		// Tiny or empty input: no decompression to do.
		return &source{Reader: br, closers: []io.Closer{raw}}, nil
	}

	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("open gzip input: %w", err)
		}
		return &source{Reader: gz, closers: []io.Closer{gz, raw}}, nil
	}
	return &source{Reader: br, closers: []io.Closer{raw}}, nil
}

type source struct {
	io.Reader
	closers []io.Closer
}

func (s *source) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
