// Package sanitize masks PII in raw page text and scores extraction quality.
// Masking runs before anything is persisted or indexed, so sensitive raw
// values never reach storage or search. It is best effort: false negatives
// are acceptable, false positives just cost a placeholder.
package sanitize

import "regexp"

// Placeholder tokens substituted for masked values.
const (
	EmailToken   = "[EMAIL]"
	PhoneToken   = "[PHONE]"
	AddressToken = "[ADDRESS]"
)

var (
	reEmail = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	rePhone = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	// House number, one to three name words, then a street suffix.
	reAddress = regexp.MustCompile(`\d{1,5}\s\w+\.?\s(\w+\s?){1,3}(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr)\b`)
)

// Mask replaces email addresses, phone numbers, and simple street addresses
// with fixed placeholder tokens. It is pure and deterministic.
func Mask(text string) string {
	if text == "" {
		return text
	}
	text = reEmail.ReplaceAllString(text, EmailToken)
	text = rePhone.ReplaceAllString(text, PhoneToken)
	text = reAddress.ReplaceAllString(text, AddressToken)
	return text
}
