/*
 * config.go
 *
 * The YAML job file lists every model to split:
 *
 *	models_to_split:
 *	  - scripts_base_path: models
 *	    initial_script: big_model
 *	    final_script: split_model
 *	    drop_intermediate: true
 *
 * Relative scripts_base_path entries resolve against the directory of the
 * config file itself, so the file can live at the project root and be run
 * from anywhere.
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Job describes one model split.
type Job struct {
	ScriptsBasePath  string `yaml:"scripts_base_path"`
	InitialScript    string `yaml:"initial_script"`
	FinalScript      string `yaml:"final_script"`
	DropIntermediate bool   `yaml:"drop_intermediate"`
}

// Validate checks the job for missing or conflicting values.
func (j *Job) Validate() error {
	if j.ScriptsBasePath == "" {
		return fmt.Errorf("scripts_base_path is required")
	}
	if j.InitialScript == "" {
		return fmt.Errorf("initial_script is required")
	}
	if j.FinalScript == "" {
		return fmt.Errorf("final_script is required")
	}
	if j.InitialScript == j.FinalScript {
		return fmt.Errorf("initial_script and final_script must differ, both are %q", j.InitialScript)
	}
	return nil
}

type file struct {
	ModelsToSplit []Job `yaml:"models_to_split"`
}

// Load reads the job list from a YAML config file.
func Load(path string) ([]Job, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if len(f.ModelsToSplit) == 0 {
		return nil, fmt.Errorf("config file %s has no models_to_split entries", path)
	}

	root := filepath.Dir(absPath)
	for i := range f.ModelsToSplit {
		j := &f.ModelsToSplit[i]
		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("models_to_split[%d]: %w", i, err)
		}
		if !filepath.IsAbs(j.ScriptsBasePath) {
			j.ScriptsBasePath = filepath.Join(root, j.ScriptsBasePath)
		}
	}

	return f.ModelsToSplit, nil
}
