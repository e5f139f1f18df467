package presence

import "github.com/pi-agent/pi-messenger/internal/errs"

const maxNameLength = 50

// ValidateName enforces the agent name charset: letters, digits, underscore,
// hyphen; leading character must be a letter, digit, or underscore; length 1-50.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > maxNameLength {
		return errs.New(errs.InvalidName, "name must be 1-50 characters")
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_':
		case r == '-':
			if i == 0 {
				return errs.New(errs.InvalidName, "name cannot start with a hyphen")
			}
		default:
			return errs.New(errs.InvalidName, "name contains an invalid character")
		}
	}
	return nil
}
