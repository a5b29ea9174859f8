package avatar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields_CoercesAndNormalizes(t *testing.T) {
	fields, msg := ParseFields([]byte(`{
		"display_name": " Competition Prep ",
		"age": "28",
		"gender": "FEMALE",
		"height_cm": "172.5",
		"weight_kg": 68,
		"body_fat_percent": "18.2",
		"waist_cm": 70
	}`))
	require.Empty(t, msg)

	require.NotNil(t, fields.DisplayName)
	assert.Equal(t, "Competition Prep", fields.DisplayName.String)

	require.NotNil(t, fields.Age)
	assert.Equal(t, int64(28), fields.Age.Int64)

	require.NotNil(t, fields.Gender)
	assert.Equal(t, "female", fields.Gender.String)

	require.NotNil(t, fields.HeightCm)
	assert.Equal(t, 172.5, fields.HeightCm.Float64)

	require.NotNil(t, fields.WeightKg)
	assert.Equal(t, 68.0, fields.WeightKg.Float64)

	// unsupplied fields stay nil
	assert.Nil(t, fields.ShoulderCircumferenceCm)
	assert.Nil(t, fields.HipsCm)
	assert.Nil(t, fields.Notes)
}

func TestParseFields_RangeViolations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"age too high", `{"age": 200}`, "age must be between 0 and 120"},
		{"age negative", `{"age": -1}`, "age must be between 0 and 120"},
		{"age fractional", `{"age": 28.5}`, "age must be an integer"},
		{"weight absurd", `{"weight_kg": 1000000}`, "weight_kg must be between 20 and 500"},
		{"height too low", `{"height_cm": 10}`, "height_cm must be between 50 and 300"},
		{"body fat over 100", `{"body_fat_percent": 101}`, "body_fat_percent must be between 0 and 100"},
		{"waist too small", `{"waist_cm": 5}`, "waist_cm must be between 30 and 300"},
		{"not a number", `{"age": "old"}`, "age must be a number"},
		{"bad gender", `{"gender": "robot"}`, "gender must be one of: male, female, non-binary, other, prefer_not_to_say"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, msg := ParseFields([]byte(tt.payload))
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestParseFields_UnsupportedFieldsEnumerated(t *testing.T) {
	_, msg := ParseFields([]byte(`{"age": 30, "zz_bogus": 1, "aa_bogus": 2}`))
	assert.Equal(t, "Unsupported fields: aa_bogus, zz_bogus", msg)
}

func TestParseFields_EmptyStringAndNullStoreNull(t *testing.T) {
	fields, msg := ParseFields([]byte(`{"display_name": "  ", "notes": null, "age": null}`))
	require.Empty(t, msg)

	require.NotNil(t, fields.DisplayName)
	assert.False(t, fields.DisplayName.Valid)

	require.NotNil(t, fields.Notes)
	assert.False(t, fields.Notes.Valid)

	require.NotNil(t, fields.Age)
	assert.False(t, fields.Age.Valid)
}

func TestParseFields_LengthLimitsCountCharacters(t *testing.T) {
	// 200 two-byte runes: 400 bytes, but only 200 of the 255 allowed characters.
	fields, msg := ParseFields([]byte(`{"display_name": "` + strings.Repeat("é", 200) + `"}`))
	require.Empty(t, msg)
	require.NotNil(t, fields.DisplayName)
	assert.Equal(t, 200, len([]rune(fields.DisplayName.String)))

	_, msg = ParseFields([]byte(`{"display_name": "` + strings.Repeat("é", 256) + `"}`))
	assert.Equal(t, "display_name must be at most 255 characters", msg)

	_, msg = ParseFields([]byte(`{"notes": "` + strings.Repeat("ก", 1001) + `"}`))
	assert.Equal(t, "notes must be at most 1000 characters", msg)
}

func TestParseFields_InvalidJSON(t *testing.T) {
	_, msg := ParseFields([]byte(`{"age":`))
	assert.Equal(t, "Invalid JSON in request body", msg)
}

func TestParseFields_EmptyBodyIsEmptyFieldSet(t *testing.T) {
	fields, msg := ParseFields(nil)
	assert.Empty(t, msg)
	assert.True(t, fields.IsEmpty())
}
