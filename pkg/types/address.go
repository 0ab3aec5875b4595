package types

import (
	"fmt"
	"regexp"
	"strings"
)

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2,}$`)

// Address is the normalized shipping/billing address stored inside order
// metadata. Legacy flat address fields are not accepted anywhere.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Normalize trims every field and upper-cases the country.
func (a Address) Normalize() Address {
	return Address{
		Name:       strings.TrimSpace(a.Name),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

// IsZero reports whether every field is empty.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Validate checks the normalized shape. Country must be an upper-case code of
// at least two letters (full country names in latin letters also pass).
func (a Address) Validate() error {
	if a.Line1 == "" {
		return fmt.Errorf("address: missing line1")
	}
	if a.City == "" {
		return fmt.Errorf("address: missing city")
	}
	if a.PostalCode == "" {
		return fmt.Errorf("address: missing postal_code")
	}
	country := strings.ToUpper(strings.ReplaceAll(a.Country, " ", ""))
	if !countryCodePattern.MatchString(country) {
		return fmt.Errorf("address: invalid country %q", a.Country)
	}
	return nil
}
