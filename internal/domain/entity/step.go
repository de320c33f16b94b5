package entity

import "time"

type StepAction string

const (
	StepNavigate   StepAction = "navigate"
	StepFind       StepAction = "find"
	StepPress      StepAction = "press"
	StepSelected   StepAction = "selected"
	StepWaitIdle   StepAction = "wait_idle"
	StepScreenshot StepAction = "screenshot"
	StepDump       StepAction = "dump"
	StepPause      StepAction = "pause"
)

func (a StepAction) String() string {
	return string(a)
}

// Step is one line of a scenario.
type Step struct {
	Action    StepAction `yaml:"action" json:"action"`
	URL       string     `yaml:"url,omitempty" json:"url,omitempty"`
	Locator   *Locator   `yaml:"locator,omitempty" json:"locator,omitempty"`
	Container string     `yaml:"container,omitempty" json:"container,omitempty"`
	// Expect is the wanted result for find (element count) and selected
	// ("true"/"false") steps. Empty means any non-failing result.
	Expect string `yaml:"expect,omitempty" json:"expect,omitempty"`
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	// Message is shown by pause steps.
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

type Scenario struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

type StepResult struct {
	Index    int           `json:"index"`
	Action   StepAction    `json:"action"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

type ScenarioResult struct {
	RunID  string       `json:"run_id"`
	Name   string       `json:"name"`
	Steps  []StepResult `json:"steps"`
	Failed bool         `json:"failed"`
}
