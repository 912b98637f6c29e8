package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// ImagePath resolves filename under dir. An absolute filename is returned
// unchanged.
func ImagePath(dir, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(dir, filename)
}

// LoadImage reads dir/filename and returns it as an 8-bit, three channel
// matrix in RGB order, whatever the file's native color model. Every call
// reads from storage. The caller owns the returned Mat and must Close it.
func LoadImage(dir, filename string) (r gocv.Mat, err error) {
	path := ImagePath(dir, filename)

	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r, &NotFoundError{Path: path, cause: err}
		}
		return
	}
	if fi.IsDir() {
		return r, &DecodeError{Path: path, Reason: "is a directory"}
	}

	bgr := gocv.IMRead(path, gocv.IMReadColor)
	if bgr.Empty() {
		bgr.Close()
		return r, &DecodeError{Path: path, Reason: "unsupported or corrupt image data"}
	}
	defer bgr.Close()

	if bgr.Type() != gocv.MatTypeCV8UC3 {
		return r, &DecodeError{Path: path, Reason: fmt.Sprintf("unexpected pixel layout %v", bgr.Type())}
	}

	r = gocv.NewMat()
	gocv.CvtColor(bgr, &r, gocv.ColorBGRToRGB)

	return r, nil
}
