package validation

import "regexp"

// Container numbers follow the ISO 6346 shape loosely: an uppercase
// owner/serial string. Legacy fleet data predates strict check-digit
// enforcement, so only the character set and length are enforced here.
var containerNumberRe = regexp.MustCompile(`^[A-Z0-9]{4,11}$`)

func IsValidContainerNumber(number string) bool {
	return containerNumberRe.MatchString(number)
}
