package validation

import "fmt"

// Password checks length bounds and that the confirmation matches.
func (v *Validator) Password(field, password, confirmation string) {
	v.Required(field, password)
	v.MinLength(field, password, MinPasswordLength)
	v.MaxLength(field, password, MaxPasswordLength)
	v.Check(password == confirmation, field, fmt.Sprintf("The %s confirmation does not match.", humanize(field)))
}
