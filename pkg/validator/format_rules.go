package validator

import (
	"regexp"
	"slices"
	"strings"
)

const atext = "-!#$%&'*+/=?^`{}|~\\w"

var (
	emailUserRegex = regexp.MustCompile(`(?i)^[` + atext + `]+(\.[` + atext + `]+)*$`)

	emailDomainRegex = regexp.MustCompile(
		`(?i)^(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)$` +
			`|^\[(25[0-5]|2[0-4]\d|[0-1]?\d?\d)(\.(25[0-5]|2[0-4]\d|[0-1]?\d?\d)){3}\]$`)

	emailDomainWhitelist = []string{"localhost"}
)

// Email fails unless the value is a string shaped like an email address.
func Email() Func {
	return func(f *Field, _ map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}
		s, ok := v.(string)
		if !ok || !isEmail(s) {
			return NewError(CodeEmail, nil)
		}
		return nil
	}
}

func isEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	user, domain := s[:at], s[at+1:]

	if !emailUserRegex.MatchString(user) {
		return false
	}
	if slices.Contains(emailDomainWhitelist, strings.ToLower(domain)) {
		return true
	}
	return emailDomainRegex.MatchString(domain)
}
