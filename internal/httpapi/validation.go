package httpapi

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"campus-attendance/internal/department"
	"campus-attendance/internal/timetable"
)

var registerOnce sync.Once

// registerValidators adds the academic_session and weekday binding tags to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("academic_session", func(fl validator.FieldLevel) bool {
			return department.ValidateSession(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, err := timetable.ParseDay(fl.Field().String())
			return err == nil
		})
	})
}
