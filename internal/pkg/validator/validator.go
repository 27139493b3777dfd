package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate - проверка структуры по validate-тегам
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - доступ к валидатору для регистрации кастомных правил
func GetValidator() *validator.Validate {
	return validate
}
