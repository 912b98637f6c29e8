package dataset

import (
	"math"
)

// OrientedBox is a rotated rectangle: center, extent and rotation angle.
// Values are kept exactly as they appear in the annotation source.
type OrientedBox [5]float64

func (b OrientedBox) CenterX() float64 { return b[0] }
func (b OrientedBox) CenterY() float64 { return b[1] }
func (b OrientedBox) Width() float64   { return b[2] }
func (b OrientedBox) Height() float64  { return b[3] }
func (b OrientedBox) Angle() float64   { return b[4] }

type AngleUnit string

const (
	Degrees AngleUnit = "degrees"
	Radians AngleUnit = "radians"
)

// Corners returns the four corners of the box in drawing order, reading the
// angle in the given unit. The box itself is not modified.
func (b OrientedBox) Corners(unit AngleUnit) (pts [4][2]float64) {
	theta := b.Angle()
	if unit != Radians {
		theta = theta * math.Pi / 180
	}
	cos, sin := math.Cos(theta), math.Sin(theta)
	hw, hh := b.Width()/2, b.Height()/2

	offsets := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	for i, o := range offsets {
		pts[i][0] = b.CenterX() + o[0]*cos - o[1]*sin
		pts[i][1] = b.CenterY() + o[0]*sin + o[1]*cos
	}

	return
}

// AnnotationRecord is the annotation of a single image. Boxes and Labels
// are positionally paired.
type AnnotationRecord struct {
	Filename string        `json:"filename" yaml:"filename"`
	Boxes    []OrientedBox `json:"bboxes" yaml:"bboxes"`
	Labels   []int         `json:"labels" yaml:"labels"`
}

// Clone returns a deep copy of r.
func (r AnnotationRecord) Clone() AnnotationRecord {
	c := AnnotationRecord{
		Filename: r.Filename,
		Boxes:    make([]OrientedBox, len(r.Boxes)),
		Labels:   make([]int, len(r.Labels)),
	}
	copy(c.Boxes, r.Boxes)
	copy(c.Labels, r.Labels)

	return c
}
