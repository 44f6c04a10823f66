// Package validation содержит проверки входных данных API сервиса SpotLight.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spotlight/spotlight-backend/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// В ошибках валидации используем имена полей из json-тегов,
	// чтобы клиент видел имена полей запроса, а не структуры Go.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// MissingFields возвращает имена всех отсутствующих обязательных полей
// структуры запроса. Обязательные поля объявляются тегом validate:"required"
// и должны быть указателями: nil означает, что поле не было передано.
func MissingFields(payload any) []string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	return missing
}

// IsValidSpotStatus проверяет, входит ли значение в допустимый набор
// статусов площадки.
func IsValidSpotStatus(s string) bool {
	switch model.SpotStatus(s) {
	case model.SpotStatusFree, model.SpotStatusInUse, model.SpotStatusPlanned, model.SpotStatusIssue:
		return true
	}
	return false
}

// IsValidReportStatus проверяет статус обращения.
func IsValidReportStatus(s string) bool {
	switch model.ReportStatus(s) {
	case model.ReportStatusUnexamined, model.ReportStatusExamined:
		return true
	}
	return false
}

// IsValidAccountRole проверяет роль учётной записи.
func IsValidAccountRole(s string) bool {
	switch model.AccountRole(s) {
	case model.AccountRoleCustomer, model.AccountRoleSalesman, model.AccountRoleOwner, model.AccountRoleOandM:
		return true
	}
	return false
}
