package handlers

import (
	"strings"

	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/security"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("bcryptlen", validateBcryptLen)
	}
}

func validateRole(fl validator.FieldLevel) bool {
	_, err := user.ParseRole(fl.Field().String())
	return err == nil
}

func validateBcryptLen(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= security.MaxPasswordBytes
}

func roleNames() string {
	names := make([]string, 0, len(user.Roles()))
	for _, r := range user.Roles() {
		names = append(names, string(r))
	}

	return strings.Join(names, ", ")
}
