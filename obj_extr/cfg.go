package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/model-collapse/rotobj/dataset"
)

// serviceConfig is the part of the service configuration file this tool
// reads.
type serviceConfig struct {
	AngleUnit string         `json:"angle_unit" validate:"omitempty,oneof=degrees radians"`
	Dataset   dataset.Config `json:"dataset"`
}

// LoadConfig reads the dataset block and angle unit of a service config file.
func LoadConfig(path string) (c serviceConfig, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &c); err != nil {
		return
	}

	err = validator.New().Struct(&c)
	return
}
