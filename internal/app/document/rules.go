package document

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	rules     *validator.Validate
	rulesOnce sync.Once
)

// Validator returns the shared validator used for field rules.
func Validator() *validator.Validate {
	rulesOnce.Do(func() {
		rules = validator.New(validator.WithRequiredStructEnabled())
	})
	return rules
}

// CheckRule reports whether rule is a tag the validator understands.
// The validator panics on unknown tags, so the probe runs under recover.
func CheckRule(rule string) (err error) {
	if rule == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bad rule %q: %v", rule, r)
		}
	}()
	_ = Validator().Var("", rule)
	return nil
}
