package batch

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/xcopr/pkg/output"
	"github.com/go-go-golems/xcopr/pkg/xerr"
)

// Config describes one run: how to batch stdin and which command to run per batch.
type Config struct {
	Command           string `yaml:"command"`
	BatchSize         int    `yaml:"batch_size"`
	Replace           string `yaml:"replace,omitempty"`
	Shell             string `yaml:"shell,omitempty"`
	TempDir           string `yaml:"temp_dir,omitempty"`
	OutputFormat      string `yaml:"output_format,omitempty"`
	StrictCorrelation bool   `yaml:"strict_correlation,omitempty"`
}

// Validate checks the options before any input is read or file created. The
// temp dir is looked up on the OS filesystem.
func (c *Config) Validate() error {
	return c.ValidateFs(afero.NewOsFs())
}

// ValidateFs is Validate with the temp dir looked up on fs, the filesystem
// the pool will be created on.
func (c *Config) ValidateFs(fs afero.Fs) error {
	if strings.TrimSpace(c.Command) == "" {
		return fmt.Errorf("command template is required: %w", xerr.ErrInvalidConfiguration)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d: %w", c.BatchSize, xerr.ErrInvalidBatchSize)
	}
	if c.BatchSize > 1 && c.Replace == "" {
		return fmt.Errorf("a replacement string is required with batch size %d: %w", c.BatchSize, xerr.ErrInvalidConfiguration)
	}
	if c.OutputFormat != "" {
		ok := false
		for _, f := range output.Formats {
			if c.OutputFormat == f {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("unknown output format %q (want one of %s): %w", c.OutputFormat, strings.Join(output.Formats, ", "), xerr.ErrInvalidConfiguration)
		}
	}
	if c.TempDir != "" {
		fi, err := fs.Stat(c.TempDir)
		if err != nil {
			return fmt.Errorf("temp dir %s: %w: %w", c.TempDir, xerr.ErrInvalidConfiguration, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("temp dir %s is not a directory: %w", c.TempDir, xerr.ErrInvalidConfiguration)
		}
	}
	return nil
}

// Values returns the fields that are set, keyed by command line parameter name.
func (c *Config) Values() map[string]interface{} {
	v := map[string]interface{}{}
	if c.Command != "" {
		v["command"] = c.Command
	}
	if c.BatchSize != 0 {
		v["batch-size"] = c.BatchSize
	}
	if c.Replace != "" {
		v["replace"] = c.Replace
	}
	if c.Shell != "" {
		v["shell"] = c.Shell
	}
	if c.TempDir != "" {
		v["temp-dir"] = c.TempDir
	}
	if c.OutputFormat != "" {
		v["output-format"] = c.OutputFormat
	}
	if c.StrictCorrelation {
		v["strict-correlation"] = true
	}
	return v
}

// LoadConfig reads a YAML job file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML job file: %w: %w", xerr.ErrInvalidConfiguration, err)
	}
	return &config, nil
}
