package charset

import (
	"strings"

	"github.com/gogs/chardet"

	"github.com/compenguy/encodingbuf/errors"
)

// SniffLen is the number of prefix bytes the statistical detector looks at.
const SniffLen = 64

// detectorAliases maps detector charset names to WHATWG labels where
// lowercasing alone does not produce a resolvable label.
var detectorAliases = map[string]string{
	"GB-18030": "gb18030",
}

// Guess is one detector candidate.
type Guess struct {
	Label      string
	Confidence int
}

// Detect runs the statistical detector over at most SniffLen bytes of the
// prefix and returns the best-guess WHATWG label with its confidence. An
// empty or unclassifiable prefix fails with a detect/detection_failed error.
//
// The detector can propose encodings outside the WHATWG index (UTF-32
// variants, the ISO-2022 CN/KR family); resolving such a label fails with
// an unknown-encoding error, which is the honest outcome for input this
// library cannot decode.
func Detect(prefix []byte) (string, int, error) {
	if len(prefix) > SniffLen {
		prefix = prefix[:SniffLen]
	}
	if len(prefix) == 0 {
		return "", 0, errors.DetectionFailed(nil)
	}
	res, err := chardet.NewTextDetector().DetectBest(prefix)
	if err != nil {
		return "", 0, errors.DetectionFailed(err)
	}
	return toLabel(res.Charset), res.Confidence, nil
}

// DetectAll returns every candidate the detector proposes, best first.
func DetectAll(prefix []byte) ([]Guess, error) {
	if len(prefix) > SniffLen {
		prefix = prefix[:SniffLen]
	}
	if len(prefix) == 0 {
		return nil, errors.DetectionFailed(nil)
	}
	results, err := chardet.NewTextDetector().DetectAll(prefix)
	if err != nil {
		return nil, errors.DetectionFailed(err)
	}
	guesses := make([]Guess, 0, len(results))
	for _, r := range results {
		guesses = append(guesses, Guess{Label: toLabel(r.Charset), Confidence: r.Confidence})
	}
	return guesses, nil
}

func toLabel(charset string) string {
	if label, ok := detectorAliases[charset]; ok {
		return label
	}
	return strings.ToLower(charset)
}
