// pkg/validator/validator.go
package validator

import (
	"campus-findu/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init регистрирует доменные правила в валидаторе gin-биндинга.
func Init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("itemcategory", func(fl validator.FieldLevel) bool {
		return models.IsValidCategory(fl.Field().String())
	})

	// coordinates: GeoJSON-пара [lng, lat] в допустимых диапазонах
	v.RegisterValidation("coordinates", func(fl validator.FieldLevel) bool {
		coords, ok := fl.Field().Interface().([]float64)
		if !ok || len(coords) != 2 {
			return false
		}
		lng, lat := coords[0], coords[1]
		return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
	})
}
