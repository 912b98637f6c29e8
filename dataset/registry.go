package dataset

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"
	"strings"
)

// Annotation source formats.
const (
	FormatTable    = "table"
	FormatDocument = "document"
)

// Loader turns an annotation source into records, in source order.
type Loader interface {
	Load(path string) ([]AnnotationRecord, error)
}

type LoaderFunc func(path string) ([]AnnotationRecord, error)

func (f LoaderFunc) Load(path string) ([]AnnotationRecord, error) { return f(path) }

var loaders = map[string]Loader{
	FormatTable:    LoaderFunc(LoadTable),
	FormatDocument: LoaderFunc(LoadDocument),
}

// LoaderFor returns the loader registered for format.
func LoaderFor(format string) (Loader, error) {
	l, ok := loaders[format]
	if !ok {
		return nil, &SchemaError{Field: "format", Reason: fmt.Sprintf("unknown annotation format %q", format)}
	}
	return l, nil
}

// DetectFormat guesses the format of an annotation source from its
// extension. It returns "" when the extension is not recognised.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FormatTable
	case ".json", ".yaml", ".yml":
		return FormatDocument
	}
	return ""
}

// Kind describes a dataset type: its fixed class table and the display
// color of each class.
type Kind struct {
	Classes []string
	Palette []color.RGBA
}

// KindRotObjects is the single-class oriented object dataset.
const KindRotObjects = "rot_objects"

var kinds = map[string]Kind{
	KindRotObjects: {
		Classes: []string{"object"},
		Palette: []color.RGBA{{0, 255, 0, 255}},
	},
}

// LookupKind returns the kind registered under name.
func LookupKind(name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("unknown dataset type %q (known: %s)", name, strings.Join(KindNames(), ", "))
	}
	return k, nil
}

func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for n := range kinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
