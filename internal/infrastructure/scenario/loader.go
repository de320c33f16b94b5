// Package scenario reads scenario files written in YAML.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"behat-locator/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("scenario has no steps")

func Load(path string) (*entity.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	sc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func Parse(r io.Reader) (*entity.Scenario, error) {
	var sc entity.Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	if len(sc.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	for i, st := range sc.Steps {
		if st.Action == "" {
			return nil, fmt.Errorf("step %d: action is required", i)
		}
		if st.Locator != nil {
			if err := st.Locator.Validate(); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
		}
	}
	return &sc, nil
}
