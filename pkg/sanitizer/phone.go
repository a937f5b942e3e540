package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Regions tried in order when a hall contact number carries no
// country prefix. Covers the leagues the clubs play in.
var (
	supportedRegions = []string{
		"DE",
		"AT",
		"CH",
	}
)

// NormalizePhone returns the E.164 form of a contact number, or the
// empty string when the input cannot be parsed for any supported region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}
