package model

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks field-level constraints of a node.
func (n Node) Validate() error {
	return validatorInstance().Struct(n)
}

// Validate checks field-level constraints of a connection.
func (c Connection) Validate() error {
	return validatorInstance().Struct(c)
}
