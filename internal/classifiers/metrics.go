package classifiers

import (
	"fmt"

	"github.com/spacesedan/impactwatch/internal/models"
)

// Accuracy is the fraction of exact label matches.
func Accuracy(want, got []models.Label) (float64, error) {
	if len(want) != len(got) {
		return 0, fmt.Errorf("accuracy: %d expected labels but %d predictions", len(want), len(got))
	}
	if len(want) == 0 {
		return 0, nil
	}

	correct := 0
	for i := range want {
		if want[i] == got[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(want)), nil
}

type LabelScore struct {
	Label     models.Label
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-label classification report in models.Labels order.
func Report(want, got []models.Label) ([]LabelScore, error) {
	if len(want) != len(got) {
		return nil, fmt.Errorf("report: %d expected labels but %d predictions", len(want), len(got))
	}

	var tp, fp, fn [models.NumLabels]int
	for i := range want {
		if want[i] == got[i] {
			tp[want[i]]++
			continue
		}
		fn[want[i]]++
		fp[got[i]]++
	}

	scores := make([]LabelScore, 0, len(models.Labels))
	for _, l := range models.Labels {
		s := LabelScore{Label: l, Support: tp[l] + fn[l]}
		s.Precision = ratio(tp[l], tp[l]+fp[l])
		s.Recall = ratio(tp[l], tp[l]+fn[l])
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
