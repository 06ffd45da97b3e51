package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name    string `validate:"max=5"`
	Address string `validate:"required,eth_addr"`
	Amount  string `validate:"required,wei"`
}

func TestNew_WeiAndAddressRules(t *testing.T) {
	v := New()

	ok := row{Name: "Ann", Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Amount: "1000"}
	assert.NoError(t, v.Struct(ok))

	bad := row{Name: "Annabelle", Address: "0x123", Amount: "-1"}
	err := v.Struct(bad)
	require.Error(t, err)

	fields := ToFieldErrors(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "Name", fields[0].Field)
	assert.Equal(t, "max", fields[0].Rule)
	assert.Equal(t, "eth_addr", fields[1].Rule)
	assert.Equal(t, "wei", fields[2].Rule)
	assert.Contains(t, fields.Error(), "Address must be a 0x-prefixed")
}

func TestRegisterBindingValidators(t *testing.T) {
	RegisterBindingValidators()
	RegisterBindingValidators()

	type body struct {
		Amount string `binding:"required,wei"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(&body{Amount: "42"}))
	assert.Error(t, binding.Validator.ValidateStruct(&body{Amount: "4.2"}))
}

func TestToFieldErrors(t *testing.T) {
	assert.Nil(t, ToFieldErrors(nil))

	plain := ToFieldErrors(errors.New("unexpected EOF"))
	require.Len(t, plain, 1)
	assert.Equal(t, "body", plain[0].Field)
	assert.Equal(t, "validation failed: body unexpected EOF", plain.Error())

	assert.Equal(t, "validation failed", FieldErrors{}.Error())

	var verrs validator.ValidationErrors
	assert.False(t, errors.As(errors.New("x"), &verrs))
}
