package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column names of the table format.
const (
	ColImageName = "image_name"
	ColX         = "x"
	ColY         = "y"
	ColWidth     = "width"
	ColHeight    = "height"
	ColAngle     = "angle"
)

var tableColumns = []string{ColImageName, ColX, ColY, ColWidth, ColHeight, ColAngle}

// LoadTable reads a delimited table with one image and exactly one box per
// row. Every box gets label 0. Any malformed row aborts the load.
func LoadTable(path string) (ret []AnnotationRecord, err error) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}
	r.ReuseRecord = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &SchemaError{File: path, Reason: "missing header row"}
	}
	if err != nil {
		return nil, csvError(path, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	cols := make([]int, len(tableColumns))
	for i, name := range tableColumns {
		c, ok := idx[name]
		if !ok {
			return nil, &SchemaError{File: path, Field: name, Reason: "required column is missing"}
		}
		cols[i] = c
	}

	ret = make([]AnnotationRecord, 0)
	for row := 1; ; row++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(path, err)
		}

		entry := fmt.Sprintf("row %d", row)
		name := fields[cols[0]]
		if name == "" {
			return nil, &SchemaError{File: path, Entry: entry, Field: ColImageName, Reason: "empty value"}
		}

		var box OrientedBox
		for i := range box {
			field := tableColumns[i+1]
			raw := strings.TrimSpace(fields[cols[i+1]])
			v, perr := strconv.ParseFloat(raw, 64)
			if perr != nil {
				return nil, &ParseError{File: path, Entry: entry, Field: field, Value: raw, cause: perr}
			}
			box[i] = v
		}

		ret = append(ret, AnnotationRecord{
			Filename: name,
			Boxes:    []OrientedBox{box},
			Labels:   []int{0},
		})
	}

	return ret, nil
}

func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		if errors.Is(pe.Err, csv.ErrFieldCount) {
			return &SchemaError{File: path, Entry: fmt.Sprintf("line %d", pe.Line), Reason: "field count differs from header"}
		}
		return &ParseError{File: path, Entry: fmt.Sprintf("line %d", pe.Line), cause: pe.Err}
	}
	return &ParseError{File: path, cause: err}
}
