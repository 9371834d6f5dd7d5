package sanitize

import "strings"

const (
	qualityLengthSaturation = 1000
	qualityDensityWeight    = 4.0
)

// Quality estimates how usable extracted text is, in [0,1]. It combines a
// length term saturating at 1000 characters with a space-density term,
// weighted equally. Empty text scores 0. The score is a triage signal for
// downstream consumers, not an authoritative OCR confidence.
func Quality(text string) float64 {
	if text == "" {
		return 0.0
	}

	lengthTerm := float64(len(text)) / qualityLengthSaturation
	if lengthTerm > 1.0 {
		lengthTerm = 1.0
	}

	density := float64(strings.Count(text, " ")) / float64(len(text)+1)
	densityTerm := density * qualityDensityWeight
	if densityTerm > 1.0 {
		densityTerm = 1.0
	}

	return lengthTerm*0.5 + densityTerm*0.5
}
