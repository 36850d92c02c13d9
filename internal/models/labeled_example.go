package models

type LabeledExample struct {
	Text  string `json:"text"`
	Label Label  `json:"label"`
}

// Dataset is an ordered sequence of labeled examples.
type Dataset []LabeledExample

// Texts returns the text column in row order.
func (d Dataset) Texts() []string {
	texts := make([]string, len(d))
	for i, ex := range d {
		texts[i] = ex.Text
	}
	return texts
}

// Distribution counts rows per label.
func (d Dataset) Distribution() map[Label]int {
	counts := make(map[Label]int, len(Labels))
	for _, ex := range d {
		counts[ex.Label]++
	}
	return counts
}
