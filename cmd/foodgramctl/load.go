package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pageza/foodgram/backend/internal/models"
)

type ingredientRecord struct {
	Name            string `json:"name" yaml:"name"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit"`
}

type tagRecord struct {
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
}

// decodeFile picks the decoder from the file extension.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		return fmt.Errorf("%s: unsupported file type, want .json, .yaml or .yml", path)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func readIngredients(path string) ([]models.Ingredient, error) {
	var records []ingredientRecord
	if err := decodeFile(path, &records); err != nil {
		return nil, err
	}
	out := make([]models.Ingredient, 0, len(records))
	for _, r := range records {
		out = append(out, models.Ingredient{Name: r.Name, MeasurementUnit: r.MeasurementUnit})
	}
	return out, nil
}

func readTags(path string) ([]models.Tag, error) {
	var records []tagRecord
	if err := decodeFile(path, &records); err != nil {
		return nil, err
	}
	out := make([]models.Tag, 0, len(records))
	for _, r := range records {
		out = append(out, models.Tag{Name: r.Name, Slug: r.Slug})
	}
	return out, nil
}
