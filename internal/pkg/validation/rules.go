package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Email address shape; unlike validator's email tag it requires a dotted domain
	EmailPattern = `^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`

	// Password length bounds; bcrypt ignores input beyond 72 bytes
	PasswordMinLength = 6
	PasswordMaxLength = 72

	// Name validation min/max length
	NameMinLength = 1
	NameMaxLength = 100

	// Course capacity bounds; 0 means unlimited
	CapacityMax = 500
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// Custom validator tags
const (
	TagPassword   = "password"
	TagPersonName = "personname"
	TagNotBlank   = "notblank"
	TagCapacity   = "capacity"
	TagMailbox    = "mailbox"
)

// Register installs the custom tags on v.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagPassword: func(fl validator.FieldLevel) bool {
			return ValidPassword(fl.Field().String())
		},
		TagPersonName: func(fl validator.FieldLevel) bool {
			return ValidName(fl.Field().String())
		},
		TagNotBlank: func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		TagCapacity: func(fl validator.FieldLevel) bool {
			return ValidCapacity(int(fl.Field().Int()))
		},
		TagMailbox: func(fl validator.FieldLevel) bool {
			return ValidEmail(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// ValidEmail checks the address shape.
func ValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(email)
}

// ValidPassword checks password length bounds.
func ValidPassword(password string) bool {
	return len(password) >= PasswordMinLength && len(password) <= PasswordMaxLength
}

// ValidName checks a first or last name after trimming.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= NameMinLength && n <= NameMaxLength
}

// ValidCapacity accepts 0 (unlimited) or 1..CapacityMax.
func ValidCapacity(capacity int) bool {
	return capacity >= 0 && capacity <= CapacityMax
}
