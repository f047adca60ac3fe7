package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the static warehouse parameters, loadable from a YAML file.
// Field names mirror the parameter file keys.
type Config struct {
	NColumns               int     `yaml:"n_columns"`
	NRows                  int     `yaml:"n_rows"`
	NRobotsRow             int     `yaml:"n_robots_row"`    // robots stacked along the row axis
	NRobotsColumn          int     `yaml:"n_robots_column"` // robots side by side along the column axis
	DistanceBetweenShelves int     `yaml:"distance_between_shelves"`
	RobotDomainSize        [2]int  `yaml:"robot_domain_size"` // [rows, cols], shared edges included
	ProbItemAppears        float64 `yaml:"prob_item_appears"`
	LearningRobotID        int     `yaml:"learning_robot_id"`
	NStepsEpisode          int     `yaml:"n_steps_episode"`
	ObsType                ObsType `yaml:"obs_type"`

	// Render toggles are read by the render surface only.
	Render      bool    `yaml:"render"`
	RenderDelay float64 `yaml:"render_delay"` // seconds between rendered frames
}

// DefaultConfig returns the 25x25, 4x4-robot layout with 7x7 domains.
func DefaultConfig() Config {
	return Config{
		NColumns:               25,
		NRows:                  25,
		NRobotsRow:             4,
		NRobotsColumn:          4,
		DistanceBetweenShelves: 6,
		RobotDomainSize:        [2]int{7, 7},
		ProbItemAppears:        0.05,
		LearningRobotID:        0,
		NStepsEpisode:          100,
		ObsType:                ObsVector,
		RenderDelay:            0.5,
	}
}

// LoadConfig reads and parses a YAML parameter file. Unknown keys are
// rejected so that typos surface as errors. The result is not validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading warehouse config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing warehouse config: %w", err)
	}
	return &cfg, nil
}

// NumRobots is the roster size implied by the robot grid.
func (c Config) NumRobots() int {
	return c.NRobotsRow * c.NRobotsColumn
}

// Validate checks dimensions, tiling and ranges. Every failure wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	if c.NRows <= 0 || c.NColumns <= 0 {
		return fmt.Errorf("%w: grid must be positive, got %dx%d", ErrInvalidConfig, c.NRows, c.NColumns)
	}
	if c.NRobotsRow <= 0 || c.NRobotsColumn <= 0 {
		return fmt.Errorf("%w: robot grid must be positive, got %dx%d", ErrInvalidConfig, c.NRobotsRow, c.NRobotsColumn)
	}
	h, w := c.RobotDomainSize[0], c.RobotDomainSize[1]
	if h < 2 || w < 2 {
		return fmt.Errorf("%w: robot_domain_size must be at least 2x2, got %dx%d", ErrInvalidConfig, h, w)
	}
	// Adjacent domains share exactly one row/column.
	if want := c.NRobotsRow*(h-1) + 1; c.NRows != want {
		return fmt.Errorf("%w: %d robot rows of height %d tile %d rows, grid has %d",
			ErrInvalidConfig, c.NRobotsRow, h, want, c.NRows)
	}
	if want := c.NRobotsColumn*(w-1) + 1; c.NColumns != want {
		return fmt.Errorf("%w: %d robot columns of width %d tile %d columns, grid has %d",
			ErrInvalidConfig, c.NRobotsColumn, w, want, c.NColumns)
	}
	if c.DistanceBetweenShelves <= 0 {
		return fmt.Errorf("%w: distance_between_shelves must be positive, got %d", ErrInvalidConfig, c.DistanceBetweenShelves)
	}
	if c.ProbItemAppears < 0 || c.ProbItemAppears > 1 || c.ProbItemAppears != c.ProbItemAppears {
		return fmt.Errorf("%w: prob_item_appears must be in [0,1], got %v", ErrInvalidConfig, c.ProbItemAppears)
	}
	if c.NStepsEpisode <= 0 {
		return fmt.Errorf("%w: n_steps_episode must be positive, got %d", ErrInvalidConfig, c.NStepsEpisode)
	}
	if !validObsTypes[c.ObsType] {
		return fmt.Errorf("%w: unknown obs_type %q", ErrInvalidConfig, c.ObsType)
	}
	if c.LearningRobotID < 0 || c.LearningRobotID >= c.NumRobots() {
		return fmt.Errorf("%w: learning_robot_id %d outside roster of %d", ErrInvalidConfig, c.LearningRobotID, c.NumRobots())
	}
	if c.RenderDelay < 0 {
		return fmt.Errorf("%w: render_delay must be non-negative, got %v", ErrInvalidConfig, c.RenderDelay)
	}
	return nil
}
