package hcard

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProfileField is one displayable (label, value) pair for the confirmation
// page. Value may be empty for a required field the document did not carry.
type ProfileField struct {
	Label string
	Value string
}

// Honorific prefixes that imply a gender when the document carries no
// explicit gender class. Lookup is case-insensitive; unmatched prefixes
// yield no value.
var honorificGender = map[string]string{
	"mr":  "M",
	"ms":  "F",
	"mrs": "F",
}

var fieldLabels = map[string]string{
	"fullname": "Full name",
	"dob":      "Date of Birth",
	"postcode": "Postal code",
}

var genderValues = map[string]string{
	"M": "Male",
	"F": "Female",
}

var titleCaser = cases.Title(language.English)

// Value resolves one Simple Registration field against the card, applying
// the field-specific overrides and aliases.
func (c *Card) Value(field string) string {
	switch field {
	case "gender":
		return c.gender()
	case "dob":
		return c.dob()
	case "nickname":
		if v := c.Property("nickname"); v != "" {
			return v
		}
		return c.Property("fn")
	case "fullname":
		return c.Property("fn")
	case "postcode":
		return c.Property("postal-code")
	case "country":
		return c.Property("country-name")
	case "timezone":
		return c.Property("tz")
	default:
		return c.Property(field)
	}
}

func (c *Card) gender() string {
	if v := c.Property("x-gender"); v != "" {
		return v
	}
	if v := c.Property("gender"); v != "" {
		return v
	}
	return honorificGender[strings.ToLower(c.Property("honorific-prefix"))]
}

func (c *Card) dob() string {
	bday := c.Property("bday")
	if len(bday) > 10 {
		return bday[:10]
	}
	return bday
}

// Profile builds the displayable field list: required fields first in caller
// order (always present, value possibly empty), then optional fields in
// caller order when a value was found.
func (c *Card) Profile(required, optional []string) []ProfileField {
	var profile []ProfileField
	for _, field := range required {
		profile = append(profile, displayField(field, c.Value(field)))
	}
	for _, field := range optional {
		if value := c.Value(field); value != "" {
			profile = append(profile, displayField(field, value))
		}
	}
	return profile
}

// Values builds the raw field map attached to an approval as the Simple
// Registration extension. Unresolved fields are omitted.
func (c *Card) Values(fields []string) map[string]string {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		if v := c.Value(field); v != "" {
			values[field] = v
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func displayField(field, value string) ProfileField {
	label, ok := fieldLabels[field]
	if !ok {
		label = titleCaser.String(field)
	}
	if field == "gender" {
		if translated, ok := genderValues[value]; ok {
			value = translated
		}
	}
	return ProfileField{Label: label, Value: value}
}
