package main

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	http "github.com/valyala/fasthttp"

	"github.com/model-collapse/rotobj/dataset"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	f, err := os.Create(filepath.Join(dir, "image0.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0644))

	ann := filepath.Join(dir, "annotations.csv")
	require.NoError(t, os.WriteFile(ann, []byte("image_name,x,y,width,height,angle\n"+
		"image0.png,32,24,20,10,30\n"+
		"missing.png,1,2,3,4,5\n"+
		"broken.png,1,2,3,4,5\n"), 0644))

	log := logrus.New()
	log.SetOutput(io.Discard)

	ds, err := dataset.New(dataset.Config{AnnFile: ann, ImgPrefix: dir}, dataset.WithLogger(log))
	require.NoError(t, err)

	return &server{ds: ds, log: log, unit: dataset.Degrees}
}

func do(s *server, uri string) *http.RequestCtx {
	var c http.RequestCtx
	c.Request.SetRequestURI(uri)
	s.handle(&c)
	return &c
}

func TestHandleInfo(t *testing.T) {
	s := newTestServer(t)

	c := do(s, "/info")
	require.Equal(t, http.StatusOK, c.Response.StatusCode())

	var got struct {
		Classes []string `json:"classes"`
		Palette []struct {
			R, G, B uint8
		} `json:"palette"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(c.Response.Body(), &got))
	assert.Equal(t, []string{"object"}, got.Classes)
	assert.Equal(t, 3, got.Count)
	require.Len(t, got.Palette, 1)
	assert.Equal(t, uint8(255), got.Palette[0].G)
}

func TestHandleRecord(t *testing.T) {
	s := newTestServer(t)

	c := do(s, "/record?index=0")
	require.Equal(t, http.StatusOK, c.Response.StatusCode())

	var rec dataset.AnnotationRecord
	require.NoError(t, json.Unmarshal(c.Response.Body(), &rec))
	assert.Equal(t, dataset.AnnotationRecord{
		Filename: "image0.png",
		Boxes:    []dataset.OrientedBox{{32, 24, 20, 10, 30}},
		Labels:   []int{0},
	}, rec)

	assert.Equal(t, http.StatusBadRequest, do(s, "/record?index=9").Response.StatusCode())
	assert.Equal(t, http.StatusBadRequest, do(s, "/record?index=x").Response.StatusCode())
	assert.Equal(t, http.StatusNotFound, do(s, "/nothing").Response.StatusCode())
}

func TestHandleImage(t *testing.T) {
	s := newTestServer(t)

	for _, uri := range []string{"/image?index=0", "/image?index=0&box=true"} {
		c := do(s, uri)
		require.Equal(t, http.StatusOK, c.Response.StatusCode(), uri)
		assert.Equal(t, "image/jpeg", string(c.Response.Header.ContentType()))
		assert.NotEmpty(t, c.Response.Body())
	}

	assert.Equal(t, http.StatusNotFound, do(s, "/image?index=1").Response.StatusCode())
	assert.Equal(t, http.StatusUnprocessableEntity, do(s, "/image?index=2").Response.StatusCode())
}

func TestDrawBoundingBoxOnImage(t *testing.T) {
	s := newTestServer(t)
	img, err := s.ds.LoadImage(0)
	require.NoError(t, err)
	defer img.Close()

	rec, err := s.ds.Record(0)
	require.NoError(t, err)

	drawBoundingBoxOnImage(&img, rec, []string{"object"}, []color.RGBA{{0, 255, 0, 255}}, dataset.Degrees)

	// The box center stays untouched, the outline is painted.
	assert.Equal(t, uint8(0), img.GetUCharAt(24, 32*3+1))
	var painted bool
	for x := 0; x < img.Cols() && !painted; x++ {
		for y := 0; y < img.Rows(); y++ {
			if img.GetUCharAt(y, x*3+1) == 255 {
				painted = true
				break
			}
		}
	}
	assert.True(t, painted)
}
