package board

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlBoardFile is the top-level YAML structure for board files.
type yamlBoardFile struct {
	Board yamlBoard `yaml:"board"`
}

// yamlBoard is the YAML representation of a board.
type yamlBoard struct {
	Snakes  map[int]int `yaml:"snakes"`
	Ladders map[int]int `yaml:"ladders"`
}

// LoadFromFile reads and validates a single board YAML file.
//
// Precondition: path must point to a valid YAML board file.
// Postcondition: Returns a validated Board or a non-nil error.
func LoadFromFile(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("reading board file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a board from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the board schema.
// Postcondition: Returns a validated Board or a non-nil error.
func LoadFromBytes(data []byte) (Board, error) {
	var file yamlBoardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Board{}, fmt.Errorf("parsing board YAML: %w", err)
	}

	b := Board{
		Snakes:  file.Board.Snakes,
		Ladders: file.Board.Ladders,
	}
	if b.Snakes == nil {
		b.Snakes = map[int]int{}
	}
	if b.Ladders == nil {
		b.Ladders = map[int]int{}
	}

	if err := b.Validate(); err != nil {
		return Board{}, fmt.Errorf("validating board: %w", err)
	}
	return b, nil
}
