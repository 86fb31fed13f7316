// Package log provides the structured logging abstraction used by the
// converter.
//
// The [Logger] interface decouples the conversion pipeline from any
// specific logging library. The default implementation wraps zerolog with
// console output on stderr; [NoopLogger] is available for tests and for
// embedding the converter as a library.
package log
