package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"

	"github.com/model-collapse/rotobj/dataset"
)

type Config struct {
	Listen    string         `json:"listen" validate:"required,hostname_port"`
	LogLevel  string         `json:"log_level" validate:"omitempty,oneof=trace debug info warn warning error"`
	LogFile   string         `json:"log_file"`
	AngleUnit string         `json:"angle_unit" validate:"omitempty,oneof=degrees radians"`
	Dataset   dataset.Config `json:"dataset"`
}

var GConf = Config{
	Listen:    "0.0.0.0:8093",
	LogLevel:  "info",
	AngleUnit: string(dataset.Degrees),
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadConfig reads the JSON config at path into GConf, then applies .env and
// environment overrides and validates the result.
func LoadConfig(path string) (err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	if err = json.Unmarshal(data, &GConf); err != nil {
		return
	}

	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return
	}
	applyEnv(&GConf)

	return validator.New().Struct(&GConf)
}

func applyEnv(c *Config) {
	overrides := map[string]*string{
		"ROTOBJ_LISTEN":     &c.Listen,
		"ROTOBJ_ANN_FILE":   &c.Dataset.AnnFile,
		"ROTOBJ_IMG_PREFIX": &c.Dataset.ImgPrefix,
		"ROTOBJ_FORMAT":     &c.Dataset.Format,
		"ROTOBJ_LOG_LEVEL":  &c.LogLevel,
	}
	for k, dst := range overrides {
		if v, ok := os.LookupEnv(k); ok {
			*dst = v
		}
	}
}
