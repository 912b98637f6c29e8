package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"a/annotations.csv": FormatTable,
		"b.TSV":             FormatTable,
		"c.json":            FormatDocument,
		"d.yaml":            FormatDocument,
		"e.YML":             FormatDocument,
		"f.pkl":             "",
		"noext":             "",
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectFormat(path), path)
	}
}

func TestLoaderFor(t *testing.T) {
	l, err := LoaderFor(FormatTable)
	require.NoError(t, err)

	path := writeFile(t, "ann.csv", "image_name,x,y,width,height,angle\na.jpg,1,2,3,4,5\n")
	recs, err := l.Load(path)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = LoaderFor("xml")
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestCorners(t *testing.T) {
	b := OrientedBox{10, 20, 4, 2, 90}
	pts := b.Corners(Degrees)

	want := [4][2]float64{{11, 18}, {11, 22}, {9, 22}, {9, 18}}
	for i := range want {
		assert.InDelta(t, want[i][0], pts[i][0], 1e-9)
		assert.InDelta(t, want[i][1], pts[i][1], 1e-9)
	}

	rad := OrientedBox{0, 0, 2, 2, 0}.Corners(Radians)
	assert.Equal(t, [2]float64{-1, -1}, rad[0])
	assert.Equal(t, OrientedBox{10, 20, 4, 2, 90}, b)
}
