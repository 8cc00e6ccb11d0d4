package domain

import "fmt"

// ValidateUnit checks a Unit before it is embedded and indexed.
func ValidateUnit(u Unit) error {
	if u.Text == "" {
		return fmt.Errorf("validate: text is empty")
	}
	if !ValidKinds[u.Kind] {
		return fmt.Errorf("validate: unknown kind %q", u.Kind)
	}
	for _, key := range RequiredAttrs[u.Kind] {
		if _, ok := u.Attrs[key]; !ok {
			return fmt.Errorf("validate: kind %s missing attribute %q", u.Kind, key)
		}
	}
	return nil
}
