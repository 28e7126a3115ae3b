package onboarding

import (
	"strings"
	"time"

	"github.com/souqly/backend/internal/domain/shared"
)

// Egyptian governorate codes embedded in national IDs. 88 marks citizens
// born abroad.
var governorateCodes = map[string]bool{
	"01": true, "02": true, "03": true, "04": true, "11": true, "12": true,
	"13": true, "14": true, "15": true, "16": true, "17": true, "18": true,
	"19": true, "21": true, "22": true, "23": true, "24": true, "25": true,
	"26": true, "27": true, "28": true, "29": true, "31": true, "32": true,
	"33": true, "34": true, "35": true, "88": true,
}

const minVendorAge = 18

// ValidateNationalID validates an Egyptian national ID number: 14 digits,
// century digit 2 (1900s) or 3 (2000s), a real birth date at least 18 years
// in the past, and a known governorate code.
func ValidateNationalID(id string, now time.Time) error {
	id = strings.TrimSpace(id)
	if len(id) != 14 {
		return shared.NewValidationError("National ID must be exactly 14 digits")
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return shared.NewValidationError("National ID must contain only digits")
		}
	}

	var century int
	switch id[0] {
	case '2':
		century = 1900
	case '3':
		century = 2000
	default:
		return shared.NewValidationError("National ID has an invalid century digit")
	}

	year := century + int(id[1]-'0')*10 + int(id[2]-'0')
	month := int(id[3]-'0')*10 + int(id[4]-'0')
	day := int(id[5]-'0')*10 + int(id[6]-'0')

	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if birth.Year() != year || int(birth.Month()) != month || birth.Day() != day {
		return shared.NewValidationError("National ID encodes an invalid birth date")
	}
	if birth.After(now) {
		return shared.NewValidationError("National ID encodes a birth date in the future")
	}
	if birth.AddDate(minVendorAge, 0, 0).After(now) {
		return shared.NewValidationError("Vendor must be at least 18 years old")
	}

	if !governorateCodes[id[7:9]] {
		return shared.NewValidationError("National ID has an unknown governorate code")
	}

	return nil
}

// ValidatePhone validates an Egyptian mobile number. Accepts local form
// (01X + 8 digits) and the +20 / 0020 international prefixes.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	switch {
	case strings.HasPrefix(phone, "+20"):
		phone = "0" + phone[3:]
	case strings.HasPrefix(phone, "0020"):
		phone = "0" + phone[4:]
	}

	if len(phone) != 11 {
		return shared.NewValidationError("Phone number must be 11 digits")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return shared.NewValidationError("Phone number must contain only digits")
		}
	}
	if phone[0] != '0' || phone[1] != '1' {
		return shared.NewValidationError("Phone number must be an Egyptian mobile number")
	}
	switch phone[2] {
	case '0', '1', '2', '5':
	default:
		return shared.NewValidationError("Phone number has an unknown mobile operator prefix")
	}

	return nil
}

// Disposable mail providers commonly used to evade signup controls.
// Matching is a risk signal, not a hard rejection.
var disposableEmailDomains = map[string]bool{
	"mailinator.com":   true,
	"guerrillamail.com": true,
	"10minutemail.com": true,
	"tempmail.com":     true,
	"throwawaymail.com": true,
	"yopmail.com":      true,
	"sharklasers.com":  true,
	"trashmail.com":    true,
}

// IsDisposableEmailDomain reports whether the email's domain is a known
// disposable provider.
func IsDisposableEmailDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	return disposableEmailDomains[strings.ToLower(email[at+1:])]
}
