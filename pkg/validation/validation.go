package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"scholarship-fund.backend/pkg/utils"
)

// FieldError describes one failed rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

// FieldErrors is a list of failed rules
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}
	if len(fe) == 1 {
		return fmt.Sprintf("validation failed: %s %s", fe[0].Field, fe[0].Message)
	}
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+" "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var bindingOnce sync.Once

// RegisterRules adds the registry rules ("wei") to v
func RegisterRules(v *validator.Validate) error {
	return v.RegisterValidation("wei", func(fl validator.FieldLevel) bool {
		return utils.IsAmount(fl.Field().String())
	})
}

// New returns a validator using the "validate" tag with registry rules installed
func New() *validator.Validate {
	v := validator.New()
	if err := RegisterRules(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterBindingValidators installs the registry rules on gin's binding engine.
// Safe to call more than once.
func RegisterBindingValidators() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := RegisterRules(v); err != nil {
				panic(err)
			}
		}
	})
}

// ToFieldErrors flattens validator errors; other errors become a single entry
func ToFieldErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "body", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: ruleMessage(fe),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eth_addr":
		return "must be a 0x-prefixed 20-byte hex address"
	case "wei":
		return "must be a non-negative base-10 integer within the uint256 range"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "hexadecimal":
		return "must be hex encoded"
	}
	return "failed " + fe.Tag()
}
