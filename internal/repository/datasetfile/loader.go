// Package datasetfile reads labeled training sets from YAML or TOML files.
package datasetfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/knnvote/internal/domain"
	"github.com/kailas-cloud/knnvote/internal/domain/dataset"
)

// Format is a dataset file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// fileDTO is the on-disk shape shared by both formats.
type fileDTO struct {
	Name    string     `yaml:"name" toml:"name"`
	Classes []string   `yaml:"classes" toml:"classes"`
	Points  []pointDTO `yaml:"points" toml:"points"`
}

type pointDTO struct {
	Features []float64 `yaml:"features" toml:"features"`
	Class    string    `yaml:"class" toml:"class"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: unsupported file extension %q", domain.ErrInvalidDataset, filepath.Ext(path))
	}
}

// Load reads and validates a dataset file.
func Load(path string) (dataset.Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return dataset.Dataset{}, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	d, err := Parse(data, format)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return d, nil
}

// LoadAll loads every file and stops at the first failure.
func LoadAll(paths []string) ([]dataset.Dataset, error) {
	out := make([]dataset.Dataset, 0, len(paths))
	for _, p := range paths {
		d, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Parse decodes a dataset from raw bytes.
func Parse(data []byte, format Format) (dataset.Dataset, error) {
	var dto fileDTO
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &dto); err != nil {
			return dataset.Dataset{}, fmt.Errorf("%w: %v", domain.ErrInvalidDataset, err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &dto); err != nil {
			return dataset.Dataset{}, fmt.Errorf("%w: %v", domain.ErrInvalidDataset, err)
		}
	default:
		return dataset.Dataset{}, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidDataset, format)
	}
	return dto.toDomain()
}

func (f fileDTO) toDomain() (dataset.Dataset, error) {
	cat, err := dataset.NewCatalog(f.Classes)
	if err != nil {
		return dataset.Dataset{}, err
	}

	objects := make([][]float64, len(f.Points))
	mapping := make([]int, len(f.Points))
	for i, p := range f.Points {
		c, ok := cat.IndexOf(p.Class)
		if !ok {
			return dataset.Dataset{}, fmt.Errorf("%w: point %d has unknown class %q", domain.ErrInvalidDataset, i, p.Class)
		}
		objects[i] = p.Features
		mapping[i] = c
	}

	return dataset.New(f.Name, f.Classes, objects, mapping)
}
