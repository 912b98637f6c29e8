package dataset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadDocument reads a JSON or YAML document whose root is a sequence of
// entries shaped like
//
//	{filename: "a.jpg", ann: {bboxes: [[cx, cy, w, h, a], ...], labels: [0, ...]}}
//
// Missing bboxes or labels default to empty. An entry whose box and label
// counts differ is rejected, never repaired.
func LoadDocument(path string) (ret []AnnotationRecord, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var root interface{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &root)
	} else {
		err = json.Unmarshal(data, &root)
	}
	if err != nil {
		return nil, &ParseError{File: path, cause: err}
	}

	entries, ok := root.([]interface{})
	if !ok {
		return nil, &SchemaError{File: path, Reason: fmt.Sprintf("root must be a sequence of entries, got %s", kindOf(root))}
	}

	ret = make([]AnnotationRecord, 0, len(entries))
	for i, raw := range entries {
		rec, err := decodeEntry(path, i+1, raw)
		if err != nil {
			return nil, err
		}
		ret = append(ret, rec)
	}

	return ret, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeEntry(path string, n int, raw interface{}) (rec AnnotationRecord, err error) {
	entry := fmt.Sprintf("entry %d", n)

	m, ok := asMapping(raw)
	if !ok {
		return rec, &SchemaError{File: path, Entry: entry, Reason: fmt.Sprintf("entry must be a mapping, got %s", kindOf(raw))}
	}

	fn, ok := m["filename"]
	if !ok || fn == nil {
		return rec, &SchemaError{File: path, Entry: entry, Field: "filename", Reason: "required key is missing"}
	}
	if rec.Filename, ok = fn.(string); !ok {
		return rec, &ParseError{File: path, Entry: entry, Field: "filename", Value: fmt.Sprint(fn), cause: fmt.Errorf("expected string, got %s", kindOf(fn))}
	}
	if rec.Filename == "" {
		return rec, &SchemaError{File: path, Entry: entry, Field: "filename", Reason: "empty value"}
	}
	entry = fmt.Sprintf("entry %d (%s)", n, rec.Filename)

	annRaw, ok := m["ann"]
	if !ok || annRaw == nil {
		return rec, &SchemaError{File: path, Entry: entry, Field: "ann", Reason: "required key is missing"}
	}
	ann, ok := asMapping(annRaw)
	if !ok {
		return rec, &SchemaError{File: path, Entry: entry, Field: "ann", Reason: fmt.Sprintf("must be a mapping, got %s", kindOf(annRaw))}
	}

	boxes, err := sequence(path, entry, "ann.bboxes", ann["bboxes"])
	if err != nil {
		return
	}
	rec.Boxes = make([]OrientedBox, len(boxes))
	for i, b := range boxes {
		field := fmt.Sprintf("ann.bboxes[%d]", i)
		vals, ok := b.([]interface{})
		if !ok {
			return rec, &SchemaError{File: path, Entry: entry, Field: field, Reason: fmt.Sprintf("box must be a sequence, got %s", kindOf(b))}
		}
		if len(vals) != len(rec.Boxes[i]) {
			return rec, &SchemaError{File: path, Entry: entry, Field: field, Reason: fmt.Sprintf("box must have 5 values, got %d", len(vals))}
		}
		for j, v := range vals {
			f, ok := toFloat(v)
			if !ok {
				return rec, &ParseError{File: path, Entry: entry, Field: fmt.Sprintf("%s[%d]", field, j), Value: fmt.Sprint(v)}
			}
			rec.Boxes[i][j] = f
		}
	}

	labels, err := sequence(path, entry, "ann.labels", ann["labels"])
	if err != nil {
		return
	}
	rec.Labels = make([]int, len(labels))
	for i, l := range labels {
		v, ok := toInt(l)
		if !ok {
			return rec, &ParseError{File: path, Entry: entry, Field: fmt.Sprintf("ann.labels[%d]", i), Value: fmt.Sprint(l)}
		}
		rec.Labels[i] = v
	}

	if len(rec.Boxes) != len(rec.Labels) {
		return rec, &SchemaError{
			File:   path,
			Entry:  entry,
			Field:  "ann",
			Reason: fmt.Sprintf("%d bboxes but %d labels", len(rec.Boxes), len(rec.Labels)),
		}
	}

	return rec, nil
}

// sequence treats an absent or null value as the empty sequence.
func sequence(path, entry, field string, v interface{}) ([]interface{}, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.([]interface{})
	if !ok {
		return nil, &SchemaError{File: path, Entry: entry, Field: field, Reason: fmt.Sprintf("must be a sequence, got %s", kindOf(v))}
	}
	return s, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case jsoniter.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toInt accepts integral numbers within the int32 range, whatever type the
// decoder produced for them.
func toInt(v interface{}) (int, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxInt32 {
			return 0, false
		}
		n = int64(x)
	default:
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		n = int64(f)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// asMapping returns v as a string-keyed mapping. YAML mappings with
// non-string keys are converted by formatting each key.
func asMapping(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		ret := make(map[string]interface{}, len(m))
		for k, val := range m {
			ret[fmt.Sprint(k)] = val
		}
		return ret, true
	}
	return nil, false
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "sequence"
	case map[string]interface{}, map[interface{}]interface{}:
		return "mapping"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
