// Package countries maps free-text location strings to ISO-3166 alpha-2
// codes. Resolution is two-stage: a curated alias table wins, then a fuzzy
// match against the full country registry. Unrecognized input is a normal
// outcome, not an error.
package countries

import (
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/pariz/gountries"

	"github.com/archivelab/vault/internal/util"
)

// Curated aliases covering historical and colloquial names that the registry
// does not resolve, plus high-traffic shorthands. Keys are uppercase.
var aliases = map[string]string{
	"USA":            "US",
	"UNITED STATES":  "US",
	"U.S.":           "US",
	"U.S.A.":         "US",
	"AMERICA":        "US",
	"UK":             "GB",
	"UNITED KINGDOM": "GB",
	"GREAT BRITAIN":  "GB",
	"ENGLAND":        "GB",
	"SCOTLAND":       "GB",
	"TURKEY":         "TR",
	"TÜRKİYE":        "TR",
	"TURKIYE":        "TR",
	"CHINA":          "CN",
	"PRC":            "CN",
	"RUSSIA":         "RU",
	"RUSSIAN FEDERATION": "RU",
	"USSR":               "RU",
	"SOVIET UNION":       "RU",
	"ISRAEL":             "IL",
	"PALESTINE":          "PS",
	"UKRAINE":            "UA",
	"GERMANY":            "DE",
	"FRANCE":             "FR",
	"UAE":                "AE",
	"EMIRATES":           "AE",
	"SAUDI":              "SA",
	"SAUDI ARABIA":       "SA",
	"HOLLAND":            "NL",
	"VIRGIN ISLANDS":     "VI",
	"US VIRGIN ISLANDS":  "VI",
	"ST. THOMAS":         "VI",
	"ST THOMAS":          "VI",
	"NEW MEXICO":         "US",
	"SOUTH KOREA":        "KR",
	"NORTH KOREA":        "KP",
	"CZECHIA":            "CZ",
	"CZECH REPUBLIC":     "CZ",
	"BURMA":              "MM",
	"IVORY COAST":        "CI",
	"VATICAN":            "VA",
}

// FuzzyThreshold is the minimum similarity Normalize accepts from the fuzzy
// stage. Resolve reports lower-confidence candidates down to resolveFloor so
// callers can apply their own threshold.
const (
	FuzzyThreshold = 0.85
	resolveFloor   = 0.6
)

var (
	registryOnce sync.Once
	registry     *gountries.Query
)

func query() *gountries.Query {
	registryOnce.Do(func() {
		registry = gountries.New()
	})
	return registry
}

// Resolve maps a location string to an alpha-2 code with a confidence score.
// Alias and exact registry hits carry confidence 1.0; fuzzy candidates carry
// their similarity score. ok is false when nothing plausible was found.
func Resolve(text string) (code string, confidence float64, ok bool) {
	cleaned := strings.ToUpper(util.CollapseWhitespace(text))
	if cleaned == "" {
		return "", 0, false
	}

	if code, hit := aliases[cleaned]; hit {
		return code, 1.0, true
	}

	q := query()
	if country, err := q.FindCountryByName(strings.ToLower(cleaned)); err == nil {
		return country.Alpha2, 1.0, true
	}

	best := 0.0
	bestCode := ""
	for _, country := range q.FindAllCountries() {
		for _, candidate := range []string{country.Name.Common, country.Name.Official} {
			score := similarity(cleaned, strings.ToUpper(candidate))
			if score > best {
				best = score
				bestCode = country.Alpha2
			}
		}
	}
	if bestCode == "" || best < resolveFloor {
		return "", 0, false
	}
	return bestCode, best, true
}

// Normalize maps a location string to an alpha-2 code, suppressing fuzzy
// matches below FuzzyThreshold. ok is false for unknown locations.
func Normalize(text string) (string, bool) {
	code, confidence, ok := Resolve(text)
	if !ok || confidence < FuzzyThreshold {
		return "", false
	}
	return code, true
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
