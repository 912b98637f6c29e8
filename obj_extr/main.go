package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/model-collapse/rotobj/dataset"
)

type extractor struct {
	ds     *dataset.Dataset
	outDir string
	unit   dataset.AngleUnit
	log    *logrus.Logger
}

// matToRGBA copies an RGB matrix into an opaque RGBA image.
func matToRGBA(m gocv.Mat) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Cols(), m.Rows()))
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			img.SetRGBA(x, y, color.RGBA{m.GetUCharAt(y, x*3), m.GetUCharAt(y, x*3+1), m.GetUCharAt(y, x*3+2), 255})
		}
	}

	return img
}

// patchName flattens the record's relative path so every patch lands
// directly in the output directory. The record index keeps patches of
// duplicate filenames apart.
func patchName(filename string, idx, i int) string {
	stem := strings.TrimSuffix(filepath.ToSlash(filename), filepath.Ext(filename))
	stem = strings.ReplaceAll(stem, "/", "_")
	return fmt.Sprintf("%s_%d_%d.png", stem, idx, i)
}

// extractObject writes one masked patch per box of the idx-th record and
// returns the number written.
func (e *extractor) extractObject(idx int) (n int, err error) {
	rec, err := e.ds.Record(idx)
	if err != nil {
		return
	}

	m, err := e.ds.LoadImage(idx)
	if err != nil {
		return
	}
	img := matToRGBA(m)
	m.Close()

	for i, box := range rec.Boxes {
		poly, bnd := extractBoundingBox(box, e.unit, img.Bounds())
		if bnd.Empty() {
			e.log.WithFields(logrus.Fields{"filename": rec.Filename, "box": i}).Warn("box outside image, skipped")
			continue
		}

		nbnd := image.Rectangle{Max: bnd.Size()}

		mask := image.NewRGBA(nbnd)
		gc := draw2dimg.NewGraphicContext(mask)
		gc.SetFillColor(color.RGBA{0, 0, 0, 255})
		gc.MoveTo(poly[3][0]-float64(bnd.Min.X), poly[3][1]-float64(bnd.Min.Y))
		for _, p := range poly {
			gc.LineTo(p[0]-float64(bnd.Min.X), p[1]-float64(bnd.Min.Y))
		}
		gc.Close()
		gc.Fill()

		patch := image.NewNRGBA(nbnd)
		for y := 0; y < nbnd.Max.Y; y++ {
			for x := 0; x < nbnd.Max.X; x++ {
				c := img.RGBAAt(x+bnd.Min.X, y+bnd.Min.Y)
				patch.SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, mask.RGBAAt(x, y).A})
			}
		}

		if err = writePNG(filepath.Join(e.outDir, patchName(rec.Filename, idx, i)), patch); err != nil {
			return
		}
		n++
	}

	return
}

func writePNG(path string, img image.Image) error {
	fw, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if err := png.Encode(fw, img); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

// run extracts every record with at most workers images in flight. The
// first failure stops the run.
func (e *extractor) run(ctx context.Context, workers int) (total int, err error) {
	if err = os.MkdirAll(e.outDir, 0755); err != nil {
		return
	}

	counts := make([]int, e.ds.Len())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < e.ds.Len(); i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			n, err := e.extractObject(i)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return
	}

	for _, n := range counts {
		total += n
	}
	return
}

func main() {
	var (
		cfg      dataset.Config
		confPath string
		outDir   string
		workers  int
		unit     string
	)
	flag.StringVar(&confPath, "conf", "", "service config file; its dataset block and angle_unit replace -ann, -img, -format, -type and -angle-unit")
	flag.StringVar(&cfg.AnnFile, "ann", "annotations.csv", "annotation source")
	flag.StringVar(&cfg.ImgPrefix, "img", "images", "image base directory")
	flag.StringVar(&cfg.Format, "format", "", "annotation format: table or document (default: from extension)")
	flag.StringVar(&cfg.Type, "type", dataset.KindRotObjects, "dataset type")
	flag.StringVar(&outDir, "out", "objs", "output directory")
	flag.IntVar(&workers, "workers", 10, "images processed in parallel")
	flag.StringVar(&unit, "angle-unit", string(dataset.Degrees), "angle unit of the boxes: degrees or radians")
	flag.Parse()

	log := logrus.New()
	if workers < 1 {
		log.Fatalf("workers must be positive, got %d", workers)
	}

	if confPath != "" {
		c, err := LoadConfig(confPath)
		if err != nil {
			log.Fatalf("load config %s: %v", confPath, err)
		}
		cfg = c.Dataset
		if c.AngleUnit != "" {
			unit = c.AngleUnit
		}
	}

	ds, err := dataset.New(cfg, dataset.WithLogger(log))
	if err != nil {
		log.Fatal(err)
	}

	e := &extractor{ds: ds, outDir: outDir, unit: dataset.AngleUnit(unit), log: log}
	n, err := e.run(context.Background(), workers)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(logrus.Fields{"images": ds.Len(), "patches": n, "out": outDir}).Info("done")
}
