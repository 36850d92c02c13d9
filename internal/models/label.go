package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Label is one of the three fixed sentiment categories.
type Label int

const (
	EconomicAnxiety Label = iota
	EthicalConcern
	Optimism

	NumLabels = int(Optimism) + 1
)

// Labels lists every category in class-index order.
var Labels = []Label{EconomicAnxiety, EthicalConcern, Optimism}

var labelNames = [...]string{
	EconomicAnxiety: "Economic Anxiety",
	EthicalConcern:  "Ethical Concern",
	Optimism:        "Optimism",
}

var ErrUnknownLabel = errors.New("unknown label")

func (l Label) Valid() bool {
	return l >= EconomicAnxiety && l <= Optimism
}

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

func ParseLabel(s string) (Label, error) {
	for _, l := range Labels {
		if labelNames[l] == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// LabelFromIndex maps a class index coming out of a model back to a Label.
func LabelFromIndex(i int) (Label, error) {
	l := Label(i)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: class index %d", ErrUnknownLabel, i)
	}
	return l, nil
}

func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLabel, int(l))
	}
	return []byte(labelNames[l]), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

var _ json.Marshaler = Label(0)

func (l Label) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}
