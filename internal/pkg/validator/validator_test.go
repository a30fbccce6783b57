package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("x"))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("01912d68-783e-7a03-8467-5fa7c3bd33c4"))
	// Version 4 is rejected.
	assert.False(t, IsValidUUID("9b2d8aa2-41f5-4eaf-9341-5f8ad4a1b3c2"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
}

func TestIsValidDate(t *testing.T) {
	d, ok := IsValidDate("2025-08-31")
	assert.True(t, ok)
	assert.Equal(t, 2025, d.Year())

	_, ok = IsValidDate("2025-02-30")
	assert.False(t, ok)
	_, ok = IsValidDate("31-08-2025")
	assert.False(t, ok)
	_, ok = IsValidDate("")
	assert.False(t, ok)
}

func TestIsValidComponentCode(t *testing.T) {
	assert.True(t, IsValidComponentCode("BASIC"))
	assert.True(t, IsValidComponentCode("SSS_EE"))
	assert.True(t, IsValidComponentCode("OT125"))
	assert.False(t, IsValidComponentCode("B"))
	assert.False(t, IsValidComponentCode("basic"))
	assert.False(t, IsValidComponentCode("13TH_MONTH")) // must start with a letter
	assert.False(t, IsValidComponentCode("BASIC PAY"))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "code", Message: "is required"},
		{Field: "name", Message: "is required"},
	}
	assert.Equal(t, "code: is required; name: is required", errs.Error())
	assert.Equal(t, map[string]string{"code": "is required", "name": "is required"}, errs.ToMap())
}
