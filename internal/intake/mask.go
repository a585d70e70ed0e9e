package intake

import "strings"

// MaskName masks all but the first and last characters of a name. Names
// shorter than three runes are fully starred. Masked values are for log
// output only; they never appear in responses.
func MaskName(name string) string {
	runes := []rune(name)
	if len(runes) < 3 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

// MaskPhone masks all but the last two digits of a normalized phone number.
func MaskPhone(digits string) string {
	if len(digits) < 2 {
		return strings.Repeat("#", len(digits))
	}
	return strings.Repeat("#", 8) + digits[len(digits)-2:]
}
