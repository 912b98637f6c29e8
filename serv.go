package main

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	http "github.com/valyala/fasthttp"

	"github.com/model-collapse/rotobj/dataset"
)

type server struct {
	ds   *dataset.Dataset
	log  *logrus.Logger
	unit dataset.AngleUnit
}

func (s *server) handle(c *http.RequestCtx) {
	switch string(c.Path()) {
	case "/info":
		s.handleInfo(c)
	case "/record":
		s.handleRecord(c)
	case "/image":
		s.handleImage(c)
	default:
		c.Error("not found", http.StatusNotFound)
	}
}

func (s *server) handleInfo(c *http.RequestCtx) {
	type rgb struct {
		R uint8 `json:"r"`
		G uint8 `json:"g"`
		B uint8 `json:"b"`
	}
	palette := s.ds.Palette()
	colors := make([]rgb, len(palette))
	for i, p := range palette {
		colors[i] = rgb{p.R, p.G, p.B}
	}

	s.writeJSON(c, map[string]interface{}{
		"classes": s.ds.Classes(),
		"palette": colors,
		"count":   s.ds.Len(),
	})
}

func (s *server) handleRecord(c *http.RequestCtx) {
	idx, ok := s.index(c)
	if !ok {
		return
	}
	rec, err := s.ds.Record(idx)
	if err != nil {
		c.Error(err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(c, rec)
}

func (s *server) handleImage(c *http.RequestCtx) {
	idx, ok := s.index(c)
	if !ok {
		return
	}
	rec, err := s.ds.Record(idx)
	if err != nil {
		c.Error(err.Error(), http.StatusBadRequest)
		return
	}

	img, err := s.ds.LoadImage(idx)
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		c.Error(err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, dataset.ErrDecode):
		c.Error(err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.log.WithError(err).Error("load image")
		c.Error(err.Error(), http.StatusInternalServerError)
		return
	}
	defer img.Close()

	var draw *dataset.AnnotationRecord
	if string(c.QueryArgs().Peek("box")) == "true" {
		draw = &rec
	}

	data, err := renderSample(img, draw, s.ds.Classes(), s.ds.Palette(), s.unit)
	if err != nil {
		s.log.WithError(err).Error("encode")
		c.Error(err.Error(), http.StatusInternalServerError)
		return
	}

	c.SetContentType("image/jpeg")
	c.Write(data)
}

func (s *server) index(c *http.RequestCtx) (int, bool) {
	raw := string(c.QueryArgs().Peek("index"))
	idx, err := strconv.Atoi(raw)
	if err != nil {
		c.Error("invalid index "+strconv.Quote(raw), http.StatusBadRequest)
		return 0, false
	}
	return idx, true
}

func (s *server) writeJSON(c *http.RequestCtx, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.Error(err.Error(), http.StatusInternalServerError)
		return
	}
	c.SetContentType("application/json")
	c.Write(data)
}

func main() {
	confPath := flag.String("conf", "./conf.json", "service configuration file")
	flag.Parse()

	if err := LoadConfig(*confPath); err != nil {
		logrus.Fatalf("load config %s: %v", *confPath, err)
	}

	logger, err := NewLogger(GConf)
	if err != nil {
		logrus.Fatal(err)
	}

	ds, err := dataset.New(GConf.Dataset, dataset.WithLogger(logger))
	if err != nil {
		logger.Fatal(err)
	}

	s := &server{ds: ds, log: logger, unit: dataset.AngleUnit(GConf.AngleUnit)}

	logger.WithField("listen", GConf.Listen).Info("serving")
	if err := http.ListenAndServe(GConf.Listen, s.handle); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
