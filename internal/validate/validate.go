// Package validate performs structural validation of investigation
// targets: email shape checking and country-aware phone parsing. It
// never touches the network.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/blackeagle-id/blackeagle/internal/models"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// EmailParts is the decomposed form of a structurally valid address.
// Domain is case-folded for downstream lookups; LocalPart is folded the
// same way so it can seed username scans.
type EmailParts struct {
	LocalPart string
	Domain    string
}

// ValidateEmail reports whether raw has a plausible address shape and,
// if so, returns its parts.
func ValidateEmail(raw string) (EmailParts, bool) {
	if !emailPattern.MatchString(raw) {
		return EmailParts{}, false
	}
	at := strings.LastIndex(raw, "@")
	return EmailParts{
		LocalPart: strings.ToLower(raw[:at]),
		Domain:    strings.ToLower(raw[at+1:]),
	}, true
}

// PhoneValidator normalizes and parses phone numbers under a configured
// default-country policy.
type PhoneValidator struct {
	defaultCountryCode string // calling-code digits, no "+"
	trunkPrefix        string
}

// NewPhoneValidator builds a validator for the given default calling
// code (digits only, e.g. "62") and national trunk prefix (e.g. "0").
func NewPhoneValidator(defaultCountryCode, trunkPrefix string) *PhoneValidator {
	return &PhoneValidator{
		defaultCountryCode: defaultCountryCode,
		trunkPrefix:        trunkPrefix,
	}
}

// Normalize applies the default-country-code policy. The result always
// carries a leading "+", which makes the operation idempotent:
//   - input already starting with "+" is returned unchanged;
//   - input starting with the trunk prefix has one prefix stripped and
//     the default calling code substituted;
//   - input already starting with the default calling-code digits gets
//     a "+" prepended;
//   - anything else gets "+<defaultCC>" prepended.
func (v *PhoneValidator) Normalize(raw string) string {
	phone := strings.TrimSpace(raw)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	if v.trunkPrefix != "" && strings.HasPrefix(phone, v.trunkPrefix) {
		return "+" + v.defaultCountryCode + phone[len(v.trunkPrefix):]
	}
	if strings.HasPrefix(phone, v.defaultCountryCode) {
		return "+" + phone
	}
	return "+" + v.defaultCountryCode + phone
}

// Parse normalizes raw and attempts a full parse. An unparseable number
// is a negative result, not an error.
func (v *PhoneValidator) Parse(raw string) (*models.NormalizedPhone, bool) {
	normalized := v.Normalize(raw)
	if normalized == "" {
		return nil, false
	}

	parsed, err := phonenumbers.Parse(normalized, "")
	if err != nil {
		return nil, false
	}

	number := &models.NormalizedPhone{
		E164:           phonenumbers.Format(parsed, phonenumbers.E164),
		International:  phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL),
		CountryCode:    "+" + strconv.Itoa(int(parsed.GetCountryCode())),
		NationalNumber: strconv.FormatUint(parsed.GetNationalNumber(), 10),
		Valid:          phonenumbers.IsValidNumber(parsed),
		Possible:       phonenumbers.IsPossibleNumber(parsed),
		LineType:       lineType(parsed),
		CountryName:    "Unknown",
		Region:         "Unknown",
		Timezone:       "Unknown",
		Carrier:        "Unknown",
	}

	if desc, err := phonenumbers.GetGeocodingForNumber(parsed, "en"); err == nil && desc != "" {
		number.CountryName = desc
		number.Region = desc
	}
	if zones, err := phonenumbers.GetTimezonesForNumber(parsed); err == nil && len(zones) > 0 {
		number.Timezone = zones[0]
	}
	if carrier, err := phonenumbers.GetCarrierForNumber(parsed, "en"); err == nil && carrier != "" {
		number.Carrier = carrier
	}

	return number, true
}

func lineType(parsed *phonenumbers.PhoneNumber) models.LineType {
	switch phonenumbers.GetNumberType(parsed) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return models.LineTypeMobile
	case phonenumbers.FIXED_LINE:
		return models.LineTypeLandline
	case phonenumbers.VOIP:
		return models.LineTypeVOIP
	case phonenumbers.TOLL_FREE:
		return models.LineTypeTollFree
	case phonenumbers.PREMIUM_RATE:
		return models.LineTypePremium
	case phonenumbers.SHARED_COST:
		return models.LineTypeSharedCost
	case phonenumbers.PERSONAL_NUMBER:
		return models.LineTypePersonal
	case phonenumbers.PAGER:
		return models.LineTypePager
	case phonenumbers.UAN:
		return models.LineTypeUAN
	default:
		return models.LineTypeUnknown
	}
}
