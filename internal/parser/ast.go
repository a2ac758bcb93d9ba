package parser

// Keyword is the leading token of a step line.
type Keyword string

const (
	Given Keyword = "Given"
	When  Keyword = "When"
	Then  Keyword = "Then"
	And   Keyword = "And"
	But   Keyword = "But"
)

// StepKeywords lists the keywords a step line may start with, in match order.
var StepKeywords = []Keyword{Given, When, Then, And, But}

// Kind distinguishes the scenario-like blocks of a feature.
type Kind string

const (
	KindScenario        Kind = "Scenario"
	KindScenarioOutline Kind = "ScenarioOutline"
	KindBackground      Kind = "Background"
)

type Feature struct {
	Name       string     `json:"name" yaml:"name"`
	Path       string     `json:"path" yaml:"path"`
	RawContent string     `json:"-" yaml:"-"`
	Scenarios  []Scenario `json:"scenarios" yaml:"scenarios"`
	Tags       []string   `json:"tags" yaml:"tags"`
}

// Scenario is a Scenario, Scenario Outline or Background block. A Background is
// kept as its own record; its steps are not copied into sibling scenarios.
type Scenario struct {
	Name  string   `json:"name" yaml:"name"`
	Kind  Kind     `json:"kind" yaml:"kind"`
	Steps []Step   `json:"steps" yaml:"steps"`
	Tags  []string `json:"tags" yaml:"tags"`
	Line  int      `json:"line" yaml:"line"` // 1-based line of the header
}

type Step struct {
	Keyword Keyword `json:"keyword" yaml:"keyword"`
	Text    string  `json:"text" yaml:"text"` // without the keyword
	Line    int     `json:"line" yaml:"line"`
}

// StepCount returns the number of steps across all scenarios of f.
func (f *Feature) StepCount() int {
	n := 0
	for _, sc := range f.Scenarios {
		n += len(sc.Steps)
	}
	return n
}

func (s Step) String() string {
	return string(s.Keyword) + " " + s.Text
}
