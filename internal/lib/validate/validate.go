package validate

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Struct validates the struct tags of v with the shared validator instance.
func Struct(v interface{}) error {
	once.Do(func() {
		instance = validator.New()
	})
	return instance.Struct(v)
}
