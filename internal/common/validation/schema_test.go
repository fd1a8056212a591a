package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "message": {"type": "string", "maxLength": 10},
    "sessionId": {"type": "string"}
  },
  "required": ["message"]
}`

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{`) })
}

func TestValidate_Valid(t *testing.T) {
	s := MustCompile(testSchema)
	result := s.Validate(map[string]interface{}{"message": "balloons", "sessionId": "s1"})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_MissingRequired(t *testing.T) {
	s := MustCompile(testSchema)
	result := s.Validate(map[string]interface{}{"sessionId": "s1"})
	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("message"))
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)
}

func TestValidateJSON_WrongTypeAndLength(t *testing.T) {
	s := MustCompile(testSchema)

	result := s.ValidateJSON([]byte(`{"message": 42}`))
	require.False(t, result.Valid)
	assert.Equal(t, "message", result.Errors[0].Field)
	assert.Equal(t, "INVALID_TYPE", result.Errors[0].Code)

	result = s.ValidateJSON([]byte(`{"message": "far too long a message"}`))
	require.False(t, result.Valid)
	assert.Equal(t, "STRING_LTE", result.Errors[0].Code)
	assert.Len(t, result.GetErrorMessages(), 1)
}

func TestValidateJSON_Malformed(t *testing.T) {
	s := MustCompile(testSchema)
	result := s.ValidateJSON([]byte(`{"message":`))
	require.False(t, result.Valid)
	assert.Equal(t, "INVALID_JSON", result.Errors[0].Code)
}
