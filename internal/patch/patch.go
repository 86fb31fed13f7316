// Package patch applies a JSON Merge Patch (RFC 7396) to the extra header
// container of miniSEED records.
//
// The patch document is loaded, validated, and minimized once at startup
// and shared read-only across all records of a run.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// MaxSerializedSize is the largest serialized extra header container a
// record can carry, fixed by the uint16 length field of the version 3
// header.
const MaxSerializedSize = 65535

var emptyObject = []byte("{}")

// Document is a validated, minimized merge patch document.
type Document struct {
	data []byte
}

// Load reads and parses a merge patch document from a file. A parse or
// size failure here is fatal to the whole run, not per record.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read merge patch file: %w", err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse validates and minimizes a merge patch document. The document must
// be a JSON object: a non-object patch would replace the extra header
// container wholesale with a value the record format cannot carry.
func Parse(raw []byte) (*Document, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("parse merge patch: %v: %w", err, domain.ErrPatch)
	}

	data := buf.Bytes()
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("merge patch must be a JSON object: %w", domain.ErrPatch)
	}
	if len(data) > MaxSerializedSize {
		return nil, fmt.Errorf("merge patch serialization is %d bytes, limit %d: %w",
			len(data), MaxSerializedSize, domain.ErrPatch)
	}

	return &Document{data: data}, nil
}

// Bytes returns the minimized serialized patch document.
func (d *Document) Bytes() []byte {
	return d.data
}

// Apply merges the patch into the record's extra headers.
//
// Absent extra headers are bootstrapped to an empty object before
// patching; an empty object after patching collapses back to absent, so
// no empty containers are emitted. Application is atomic: on failure the
// record's extra headers are left in their pre-patch state.
func (d *Document) Apply(r *domain.Record) error {
	target := r.ExtraHeaders
	if target == nil {
		target = emptyObject
	}

	merged, err := jsonpatch.MergePatch(target, d.data)
	if err != nil {
		return fmt.Errorf("%s: apply merge patch: %v: %w", r.SourceID, err, domain.ErrPatch)
	}

	if bytes.Equal(merged, emptyObject) {
		r.ExtraHeaders = nil
		return nil
	}
	if len(merged) > MaxSerializedSize {
		return fmt.Errorf("%s: patched extra headers are %d bytes, limit %d: %w",
			r.SourceID, len(merged), MaxSerializedSize, domain.ErrPatch)
	}
	r.ExtraHeaders = merged
	return nil
}
