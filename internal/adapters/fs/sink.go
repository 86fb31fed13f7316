package fs

import (
	"bufio"
	"os"
)

// Sink implements ports.Sink over a file or standard output. Writes are
// buffered and strictly sequential; Close flushes everything written
// before a failed run stops, so partial output is preserved.
type Sink struct {
	w     *bufio.Writer
	f     *os.File
	bytes uint64
}

// NewSink opens the output path for writing, truncating an existing
// file. The path "-" writes standard output.
func NewSink(path string) (*Sink, error) {
	if path == "-" {
		return &Sink{w: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{w: bufio.NewWriter(f), f: f}, nil
}

// Write appends one record's bytes to the output.
func (s *Sink) Write(record []byte) error {
	n, err := s.w.Write(record)
	s.bytes += uint64(n)
	return err
}

// Bytes returns the number of bytes written so far.
func (s *Sink) Bytes() uint64 {
	return s.bytes
}

// Close flushes buffered output and closes the file. Standard output is
// flushed but left open.
func (s *Sink) Close() error {
	err := s.w.Flush()
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
