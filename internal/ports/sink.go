package ports

// Sink is the append-only output stream for converted records. Writes are
// sequential and ordered; converted records appear in the sink in the
// same relative order they were read.
type Sink interface {
	// Write appends one physical record's bytes to the output.
	Write(record []byte) error

	// Close flushes and releases the output resources.
	Close() error
}
