package entity

import (
	"fmt"
	"strings"
)

// Locator describes an element by its visible text or ARIA label,
// optionally narrowed by another located element.
type Locator struct {
	Text     string   `json:"text" yaml:"text"`
	Selector string   `json:"selector,omitempty" yaml:"selector,omitempty"`
	Within   *Locator `json:"within,omitempty" yaml:"within,omitempty"`
	Near     *Locator `json:"near,omitempty" yaml:"near,omitempty"`
}

// Depth returns how many locators are nested in l, l itself included.
func (l *Locator) Depth() int {
	if l == nil {
		return 0
	}
	depth := l.Within.Depth()
	if near := l.Near.Depth(); near > depth {
		depth = near
	}
	return depth + 1
}

func (l *Locator) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: locator is nil", ErrInvalidLocator)
	}
	if l.Text == "" {
		return fmt.Errorf("%w: text is empty", ErrInvalidLocator)
	}
	if l.Within != nil {
		if err := l.Within.Validate(); err != nil {
			return fmt.Errorf("within: %w", err)
		}
	}
	if l.Near != nil {
		if err := l.Near.Validate(); err != nil {
			return fmt.Errorf("near: %w", err)
		}
	}
	return nil
}

func (l *Locator) String() string {
	if l == nil {
		return "<nil>"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%q", l.Text)
	if l.Selector != "" {
		fmt.Fprintf(&sb, " (%s)", l.Selector)
	}
	if l.Within != nil {
		fmt.Fprintf(&sb, " within %s", l.Within)
	}
	if l.Near != nil {
		fmt.Fprintf(&sb, " near %s", l.Near)
	}
	return sb.String()
}
