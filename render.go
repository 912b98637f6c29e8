package main

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/model-collapse/rotobj/dataset"
)

// drawBoundingBoxOnImage outlines every box of rec on img, which must be
// in BGR order, and writes its class name next to the first corner.
func drawBoundingBoxOnImage(img *gocv.Mat, rec dataset.AnnotationRecord, classes []string, palette []color.RGBA, unit dataset.AngleUnit) {
	for i, box := range rec.Boxes {
		c := palette[rec.Labels[i]%len(palette)]
		corners := box.Corners(unit)

		var pts [4]image.Point
		for j, p := range corners {
			pts[j] = image.Point{X: int(math.Round(p[0])), Y: int(math.Round(p[1]))}
		}
		for j := range pts {
			gocv.Line(img, pts[j], pts[(j+1)%len(pts)], c, 2)
		}

		if l := rec.Labels[i]; l < len(classes) {
			gocv.PutText(img, classes[l], pts[0], gocv.FontHersheyComplex, 0.5, c, 1)
		}
	}
}

// renderSample encodes an RGB image as JPEG, optionally with rec drawn on it.
func renderSample(rgb gocv.Mat, rec *dataset.AnnotationRecord, classes []string, palette []color.RGBA, unit dataset.AngleUnit) ([]byte, error) {
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	if rec != nil {
		drawBoundingBoxOnImage(&bgr, *rec, classes, palette, unit)
	}

	return gocv.IMEncode(gocv.JPEGFileExt, bgr)
}
