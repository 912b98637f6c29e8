package dataset

import (
	"fmt"
	"image/color"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Config selects an annotation source and the image directory it refers to.
type Config struct {
	AnnFile   string `json:"ann_file" validate:"required"`
	ImgPrefix string `json:"img_prefix" validate:"required"`
	// Format is FormatTable or FormatDocument. Empty means detect from
	// the extension of AnnFile.
	Format string `json:"format" validate:"omitempty,oneof=table document"`
	Type   string `json:"type"`
	// Classes overrides the class table of Type.
	Classes []string `json:"classes" validate:"omitempty,dive,required"`
	// Options are carried for the training pipeline and not read here.
	Options map[string]interface{} `json:"options"`
}

// Dataset is the fully loaded annotation index of one source. Records are
// fixed after New returns; images are read on demand.
type Dataset struct {
	cfg     Config
	log     *logrus.Logger
	classes []string
	palette []color.RGBA
	records []AnnotationRecord
}

type Option func(*Dataset)

func WithLogger(l *logrus.Logger) Option {
	return func(d *Dataset) {
		d.log = l
	}
}

// Build constructs a dataset of the named kind.
func Build(kind string, cfg Config, opts ...Option) (*Dataset, error) {
	cfg.Type = kind
	return New(cfg, opts...)
}

// New loads cfg.AnnFile in a single pass. Either every record is loaded
// and checked, or an error is returned and no dataset is produced.
func New(cfg Config, opts ...Option) (*Dataset, error) {
	if cfg.Type == "" {
		cfg.Type = KindRotObjects
	}
	kind, err := LookupKind(cfg.Type)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		cfg:     cfg,
		log:     logrus.StandardLogger(),
		classes: kind.Classes,
		palette: kind.Palette,
	}
	for _, opt := range opts {
		opt(d)
	}
	if len(cfg.Classes) > 0 {
		d.classes = cfg.Classes
		d.palette = extendPalette(kind.Palette, len(cfg.Classes))
	}

	format := cfg.Format
	if format == "" {
		if format = DetectFormat(cfg.AnnFile); format == "" {
			return nil, &SchemaError{File: cfg.AnnFile, Field: "format", Reason: "cannot infer annotation format from extension"}
		}
	}
	loader, err := LoaderFor(format)
	if err != nil {
		return nil, err
	}

	records, err := loader.Load(cfg.AnnFile)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	if err := d.checkLabels(records); err != nil {
		return nil, err
	}
	d.records = records

	var boxes int
	for _, r := range records {
		boxes += len(r.Boxes)
	}
	d.log.WithFields(logrus.Fields{
		"ann_file": cfg.AnnFile,
		"format":   format,
		"type":     cfg.Type,
		"images":   len(records),
		"boxes":    boxes,
	}).Info("annotations loaded")

	return d, nil
}

func (d *Dataset) checkLabels(records []AnnotationRecord) error {
	for i, r := range records {
		for j, l := range r.Labels {
			if l < 0 || l >= len(d.classes) {
				return &SchemaError{
					File:   d.cfg.AnnFile,
					Entry:  fmt.Sprintf("entry %d (%s)", i+1, r.Filename),
					Field:  fmt.Sprintf("labels[%d]", j),
					Reason: fmt.Sprintf("label %d outside class table of size %d", l, len(d.classes)),
				}
			}
		}
	}
	return nil
}

// extendPalette cycles base so every class has a color.
func extendPalette(base []color.RGBA, n int) []color.RGBA {
	p := make([]color.RGBA, n)
	for i := range p {
		p[i] = base[i%len(base)]
	}
	return p
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) Config() Config { return d.cfg }

func (d *Dataset) Classes() []string {
	return append([]string(nil), d.classes...)
}

func (d *Dataset) Palette() []color.RGBA {
	return append([]color.RGBA(nil), d.palette...)
}

func (d *Dataset) Options() map[string]interface{} { return d.cfg.Options }

// Record returns a copy of the i-th record.
func (d *Dataset) Record(i int) (AnnotationRecord, error) {
	if i < 0 || i >= len(d.records) {
		return AnnotationRecord{}, fmt.Errorf("record index %d out of range [0, %d)", i, len(d.records))
	}
	return d.records[i].Clone(), nil
}

// Records returns a copy of all records in source order.
func (d *Dataset) Records() []AnnotationRecord {
	ret := make([]AnnotationRecord, len(d.records))
	for i, r := range d.records {
		ret[i] = r.Clone()
	}
	return ret
}

// LoadImage decodes the image of the i-th record. It is safe to call from
// multiple goroutines.
func (d *Dataset) LoadImage(i int) (gocv.Mat, error) {
	if i < 0 || i >= len(d.records) {
		return gocv.Mat{}, fmt.Errorf("record index %d out of range [0, %d)", i, len(d.records))
	}
	fn := d.records[i].Filename
	d.log.WithFields(logrus.Fields{"index": i, "filename": fn}).Debug("load image")

	return LoadImage(d.cfg.ImgPrefix, fn)
}
