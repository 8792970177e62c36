package user

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/educode/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	minPasswordLen  = 6
	pwdTooShortText = "password must be at least 6 characters in length"
	pwdMaxSim       = .7
	pwdAttrSimTag   = "pwdtoosim"
	pwdAttrSimText  = "password cannot be similar to user attributes"
)

// register validators
func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, roleTag, roleText)

	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// roleValidation checks that the provided role is one of AllRoles
func roleValidation(fl validator.FieldLevel) bool {
	role := Role(fl.Field().String())
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// newUserStructValidation rejects passwords too similar to the user's name or email.
func newUserStructValidation(sl validator.StructLevel) {
	nu, ok := sl.Current().Interface().(NewUser)
	if !ok || nu.Password == "" {
		return
	}
	if passwordTooSimilar(nu.Password, nu.Name, nu.Email) {
		sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
	}
}

func passwordTooSimilar(pwd string, attrs ...string) bool {
	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		// compare against the local part of emails too
		candidates := []string{attr}
		if at := strings.Index(attr, "@"); at > 0 {
			candidates = append(candidates, attr[:at])
		}
		for _, c := range candidates {
			ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(c, "")).Ratio()
			if ratio >= pwdMaxSim {
				return true
			}
		}
	}
	return false
}

// ValidatePassword applies the password policy of NewUser to a new password of an existing account.
func ValidatePassword(pwd string, usr User) error {
	if len(pwd) < minPasswordLen {
		return core.NewValidationError(nil, core.FieldError{Field: "new_password", Error: pwdTooShortText})
	}
	if passwordTooSimilar(pwd, usr.Name, usr.Email) {
		return core.NewValidationError(nil, core.FieldError{Field: "new_password", Error: pwdAttrSimText})
	}
	return nil
}
