package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"gearguard/pkg/constants"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"custom_email":     isGoodEmailFormat,
		"request_status":   isRequestStatus,
		"request_type":     isRequestType,
		"request_priority": isPriority,
		"user_role":        isRole,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// isGoodEmailFormat - проверка email
func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func isRequestStatus(fl validator.FieldLevel) bool {
	return constants.RequestStatus(fl.Field().String()).IsValid()
}

func isRequestType(fl validator.FieldLevel) bool {
	return constants.RequestType(fl.Field().String()).IsValid()
}

func isPriority(fl validator.FieldLevel) bool {
	return constants.Priority(fl.Field().String()).IsValid()
}

func isRole(fl validator.FieldLevel) bool {
	return constants.Role(fl.Field().String()).IsValid()
}
