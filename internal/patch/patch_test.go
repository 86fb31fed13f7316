package patch

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

func mustParse(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return doc
}

func TestApplyMergeSemantics(t *testing.T) {
	r := &domain.Record{
		SourceID:     "FDSN:XX_TEST__B_H_Z",
		ExtraHeaders: []byte(`{"a":1,"b":2}`),
	}

	doc := mustParse(t, `{"b":null,"c":3}`)
	if err := doc.Apply(r); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if got, want := string(r.ExtraHeaders), `{"a":1,"c":3}`; got != want {
		t.Errorf("extra headers = %s, want %s", got, want)
	}
}

func TestApplyBootstrapsAbsentHeaders(t *testing.T) {
	r := &domain.Record{SourceID: "FDSN:XX_TEST__B_H_Z"}

	doc := mustParse(t, `{"FDSN":{"Time":{"Quality":100}}}`)
	if err := doc.Apply(r); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := string(r.ExtraHeaders), `{"FDSN":{"Time":{"Quality":100}}}`; got != want {
		t.Errorf("extra headers = %s, want %s", got, want)
	}
}

func TestApplyEmptyResultCollapsesToAbsent(t *testing.T) {
	// Empty patch over absent headers stays absent.
	r := &domain.Record{}
	doc := mustParse(t, `{}`)
	if err := doc.Apply(r); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if r.ExtraHeaders != nil {
		t.Errorf("extra headers = %s, want absent", r.ExtraHeaders)
	}

	// Deleting the only key collapses the container too.
	r = &domain.Record{ExtraHeaders: []byte(`{"a":1}`)}
	doc = mustParse(t, `{"a":null}`)
	if err := doc.Apply(r); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if r.ExtraHeaders != nil {
		t.Errorf("extra headers = %s, want absent", r.ExtraHeaders)
	}
}

func TestApplyNestedMerge(t *testing.T) {
	r := &domain.Record{
		ExtraHeaders: []byte(`{"FDSN":{"Time":{"Quality":50},"Event":{"Begin":true}}}`),
	}

	doc := mustParse(t, `{"FDSN":{"Time":{"Quality":100}}}`)
	if err := doc.Apply(r); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Key order of the merged document is not part of the contract, so
	// compare the decoded values.
	var got, want map[string]any
	if err := json.Unmarshal(r.ExtraHeaders, &got); err != nil {
		t.Fatalf("merged headers are not valid JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"FDSN":{"Time":{"Quality":100},"Event":{"Begin":true}}}`), &want); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extra headers = %s", r.ExtraHeaders)
	}
}

func TestApplyAtomicOnFailure(t *testing.T) {
	// Corrupt target: application fails, headers stay pre-patch.
	r := &domain.Record{ExtraHeaders: []byte(`{"a":`)}

	doc := mustParse(t, `{"b":2}`)
	if err := doc.Apply(r); !errors.Is(err, domain.ErrPatch) {
		t.Fatalf("error = %v, want ErrPatch", err)
	}
	if string(r.ExtraHeaders) != `{"a":` {
		t.Error("extra headers mutated on failed apply")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	if _, err := Parse([]byte(`{"a":`)); !errors.Is(err, domain.ErrPatch) {
		t.Errorf("malformed document error = %v, want ErrPatch", err)
	}
	if _, err := Parse([]byte(`[1,2,3]`)); !errors.Is(err, domain.ErrPatch) {
		t.Errorf("non-object document error = %v, want ErrPatch", err)
	}
}

func TestParseRejectsOversized(t *testing.T) {
	huge := `{"a":"` + strings.Repeat("x", MaxSerializedSize) + `"}`
	if _, err := Parse([]byte(huge)); !errors.Is(err, domain.ErrPatch) {
		t.Errorf("oversized document error = %v, want ErrPatch", err)
	}
}

func TestParseMinimizes(t *testing.T) {
	doc := mustParse(t, "{\n  \"a\": 1\n}\n")
	if got, want := string(doc.Bytes()), `{"a":1}`; got != want {
		t.Errorf("minimized document = %s, want %s", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patch.json")
	if err := os.WriteFile(path, []byte(`{"a": 1}`), 0o644); err != nil {
		t.Fatalf("write patch file: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := string(doc.Bytes()), `{"a":1}`; got != want {
		t.Errorf("document = %s, want %s", got, want)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}
