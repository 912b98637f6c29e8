package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// WriteTable writes records in the table format. Each record must hold
// exactly one box labelled 0, the only shape the format can express.
func WriteTable(w io.Writer, records []AnnotationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableColumns); err != nil {
		return err
	}

	row := make([]string, len(tableColumns))
	for i, r := range records {
		if len(r.Boxes) != 1 || len(r.Labels) != 1 || r.Labels[0] != 0 {
			return &SchemaError{
				Entry:  fmt.Sprintf("record %d (%s)", i+1, r.Filename),
				Reason: fmt.Sprintf("table format needs one box with label 0, got %d boxes and labels %v", len(r.Boxes), r.Labels),
			}
		}
		row[0] = r.Filename
		for j, v := range r.Boxes[0] {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Document encodings accepted by WriteDocument.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

type docAnn struct {
	BBoxes []OrientedBox `json:"bboxes" yaml:"bboxes,flow"`
	Labels []int         `json:"labels" yaml:"labels,flow"`
}

type docEntry struct {
	Filename string `json:"filename" yaml:"filename"`
	Ann      docAnn `json:"ann" yaml:"ann"`
}

// WriteDocument writes records in the document format using encoding.
func WriteDocument(w io.Writer, records []AnnotationRecord, encoding string) error {
	entries := make([]docEntry, len(records))
	for i, r := range records {
		entries[i] = docEntry{
			Filename: r.Filename,
			Ann: docAnn{
				BBoxes: nonNilBoxes(r.Boxes),
				Labels: nonNilLabels(r.Labels),
			},
		}
	}

	switch encoding {
	case EncodingJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case EncodingYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown document encoding %q", encoding)
}

func nonNilBoxes(b []OrientedBox) []OrientedBox {
	if b == nil {
		return []OrientedBox{}
	}
	return b
}

func nonNilLabels(l []int) []int {
	if l == nil {
		return []int{}
	}
	return l
}
