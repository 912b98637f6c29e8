package main

import (
	"image"
	"math"

	"github.com/model-collapse/rotobj/dataset"
)

// extractBoundingBox returns the corners of box and the smallest integer
// rectangle holding them, clipped to bounds.
func extractBoundingBox(box dataset.OrientedBox, unit dataset.AngleUnit, bounds image.Rectangle) (poly [4][2]float64, r image.Rectangle) {
	poly = box.Corners(unit)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}

	r = image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	r = r.Intersect(bounds)

	return
}
