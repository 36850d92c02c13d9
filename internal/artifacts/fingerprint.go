package artifacts

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/spacesedan/impactwatch/internal/classifiers"
	"github.com/spacesedan/impactwatch/internal/features"
)

// Fingerprint identifies a trained model set. It hashes the deterministic
// encodings, so models loaded from disk fingerprint the same as the models
// that were saved.
func Fingerprint(v *features.Vectorizer, nb *classifiers.NaiveBayes, lr *classifiers.LogisticRegression) (string, error) {
	vData, err := EncodeVectorizer(v)
	if err != nil {
		return "", err
	}
	nbData, err := EncodeNaiveBayes(nb)
	if err != nil {
		return "", err
	}
	lrData, err := EncodeLogisticRegression(lr)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, data := range [][]byte{vData, nbData, lrData} {
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)[:8]), nil
}
