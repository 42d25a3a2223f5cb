// Package resolve normalizes government labels and resolves entity identity
// across municipal mergers and provinces.
package resolve

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed fusions.yaml
var embeddedFusions []byte

//go:embed provinces.yaml
var embeddedProvinces []byte

// FusionGroup is one merger: several pre-merger municipalities become Name.
type FusionGroup struct {
	Name    string   `yaml:"name"`
	Year    int      `yaml:"year"`
	Members []string `yaml:"members"`
}

type fusionFile struct {
	Fusions []FusionGroup `yaml:"fusions"`
}

// ProvinceRange maps NIS code prefixes to a province.
type ProvinceRange struct {
	Name     string   `yaml:"name"`
	Prefixes []string `yaml:"prefixes"`
}

type provinceFile struct {
	Country   string          `yaml:"country"`
	Provinces []ProvinceRange `yaml:"provinces"`
}

// LoadFusions reads a fusion table from path. An empty path returns the
// embedded table.
func LoadFusions(path string) ([]FusionGroup, error) {
	data := embeddedFusions
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "resolve: read fusion table %s", path)
		}
		data = b
	}

	var f fusionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "resolve: parse fusion table")
	}
	return f.Fusions, nil
}

func loadProvinceFile() (provinceFile, error) {
	var f provinceFile
	if err := yaml.Unmarshal(embeddedProvinces, &f); err != nil {
		return f, eris.Wrap(err, "resolve: parse province table")
	}
	return f, nil
}
