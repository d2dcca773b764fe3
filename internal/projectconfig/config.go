// Package projectconfig provides the ProjectConfig struct and loader for
// .scorer.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/autextification/scorer/internal/utils"
	"github.com/autextification/scorer/internal/validation"
	"github.com/go-viper/mapstructure/v2"
)

// FileName is the configuration file looked up by Load.
const FileName = ".scorer.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultSubmissionsDir = "../task_submissions/submissions"
	DefaultGroundTruthDir = "../task_submissions/ground_truth"

	DefaultResamples       = 100
	DefaultConfidenceLevel = 0.95
	DefaultMethod          = "basic"
	DefaultSeed            = 42

	DefaultFormat = "table"
)

// PathsConfig holds the submission and ground-truth roots.
type PathsConfig struct {
	Submissions string `mapstructure:"submissions"`
	GroundTruth string `mapstructure:"ground_truth"`
}

// BootstrapConfig holds confidence interval settings.
type BootstrapConfig struct {
	Resamples       int     `mapstructure:"resamples"`
	ConfidenceLevel float64 `mapstructure:"confidence_level"`
	Method          string  `mapstructure:"method"`
	// Seed drives the resampling RNG. Negative means seed from the clock.
	Seed *int64 `mapstructure:"seed"`
}

// OutputConfig holds leaderboard rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// ProjectConfig is the top-level configuration loaded from .scorer.yaml.
type ProjectConfig struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Output    OutputConfig    `mapstructure:"output"`
	KeepGoing *bool           `mapstructure:"keep_going"`

	// Source is the file the values were read from, empty for defaults.
	Source string `mapstructure:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Submissions: DefaultSubmissionsDir,
			GroundTruth: DefaultGroundTruthDir,
		},
		Bootstrap: BootstrapConfig{
			Resamples:       DefaultResamples,
			ConfidenceLevel: DefaultConfidenceLevel,
			Method:          DefaultMethod,
			Seed:            utils.Ptr(int64(DefaultSeed)),
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		KeepGoing: utils.Ptr(false),
	}
}

// Load finds .scorer.yaml by walking up from startDir (max 10 levels),
// validates it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parseFile(path, data)
}

// LoadFile reads an explicit config file. Unlike Load, a missing file is an error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseFile(path, data)
}

// parseFile validates and decodes one config file. Relative paths in the file
// are taken relative to the directory holding it.
func parseFile(path string, data []byte) (*ProjectConfig, error) {
	cfg, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

func parse(data []byte, baseDir string) (*ProjectConfig, error) {
	doc, violations, err := validation.ParseConfigBytes(data)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(violations, "\n  "))
	}

	var fileCfg ProjectConfig
	if err := mapstructure.Decode(doc, &fileCfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	fileCfg.Paths.Submissions = utils.AnchorPath(fileCfg.Paths.Submissions, baseDir)
	fileCfg.Paths.GroundTruth = utils.AnchorPath(fileCfg.Paths.GroundTruth, baseDir)

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .scorer.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Real I/O errors such as
// permission denied are propagated.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Submissions != "" {
		dst.Paths.Submissions = src.Paths.Submissions
	}
	if src.Paths.GroundTruth != "" {
		dst.Paths.GroundTruth = src.Paths.GroundTruth
	}

	// Bootstrap
	if src.Bootstrap.Resamples != 0 {
		dst.Bootstrap.Resamples = src.Bootstrap.Resamples
	}
	if src.Bootstrap.ConfidenceLevel != 0 {
		dst.Bootstrap.ConfidenceLevel = src.Bootstrap.ConfidenceLevel
	}
	if src.Bootstrap.Method != "" {
		dst.Bootstrap.Method = src.Bootstrap.Method
	}
	if src.Bootstrap.Seed != nil {
		dst.Bootstrap.Seed = src.Bootstrap.Seed
	}

	// Output
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}

	if src.KeepGoing != nil {
		dst.KeepGoing = src.KeepGoing
	}
}

