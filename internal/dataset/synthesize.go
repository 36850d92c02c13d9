package dataset

import (
	"math/rand/v2"

	"github.com/spacesedan/impactwatch/internal/models"
)

const (
	DEFAULT_REPLICATION = 50
	DEFAULT_SEED        = 42
)

// Synthesize repeats the catalog replication times and shuffles the rows with
// a generator seeded by seed, so the same arguments always give the same
// dataset.
func Synthesize(catalog []models.LabeledExample, replication int, seed uint64) models.Dataset {
	if replication < 0 {
		replication = 0
	}

	rows := make(models.Dataset, 0, len(catalog)*replication)
	for i := 0; i < replication; i++ {
		rows = append(rows, catalog...)
	}

	Shuffle(rows, seed)
	return rows
}

// NewRand returns the deterministic generator used for every seeded
// permutation in the pipeline.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func Shuffle(rows models.Dataset, seed uint64) {
	r := NewRand(seed)
	r.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})
}
