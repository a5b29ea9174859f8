package avatar

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// allowedFields fixes the accepted payload keys and the order violations are
// reported in.
var allowedFields = []string{
	"display_name",
	"age",
	"gender",
	"height_cm",
	"weight_kg",
	"body_fat_percent",
	"shoulder_circumference_cm",
	"waist_cm",
	"hips_cm",
	"notes",
}

var numericRanges = map[string][2]float64{
	"height_cm":                 {50, 300},
	"weight_kg":                 {20, 500},
	"body_fat_percent":          {0, 100},
	"shoulder_circumference_cm": {50, 200},
	"waist_cm":                  {30, 300},
	"hips_cm":                   {30, 300},
}

// ParseFields validates an avatar payload against the strict allow-list and
// returns either the typed field set or the message for the first violation.
// Numeric fields accept JSON numbers or numeric strings; empty strings and
// JSON nulls store NULL.
func ParseFields(body []byte) (Fields, string) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Fields{}, "Invalid JSON in request body"
	}

	var unsupported []string
	for key := range raw {
		if !isAllowed(key) {
			unsupported = append(unsupported, key)
		}
	}
	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		return Fields{}, "Unsupported fields: " + strings.Join(unsupported, ", ")
	}

	var fields Fields
	for _, key := range allowedFields {
		value, present := raw[key]
		if !present {
			continue
		}
		if msg := applyField(&fields, key, value); msg != "" {
			return Fields{}, msg
		}
	}
	return fields, ""
}

func isAllowed(key string) bool {
	for _, allowed := range allowedFields {
		if key == allowed {
			return true
		}
	}
	return false
}

func applyField(fields *Fields, key string, value any) string {
	if value == nil {
		setNull(fields, key)
		return ""
	}

	switch key {
	case "display_name":
		s, ok := value.(string)
		if !ok {
			return "display_name must be a string"
		}
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > 255 {
			return "display_name must be at most 255 characters"
		}
		fields.DisplayName = &sql.NullString{String: s, Valid: s != ""}

	case "notes":
		s, ok := value.(string)
		if !ok {
			return "notes must be a string"
		}
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > 1000 {
			return "notes must be at most 1000 characters"
		}
		fields.Notes = &sql.NullString{String: s, Valid: s != ""}

	case "gender":
		s, ok := value.(string)
		if !ok {
			return "gender must be a string"
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			fields.Gender = &sql.NullString{}
			return ""
		}
		if !validGender(s) {
			return "gender must be one of: " + strings.Join(Genders, ", ")
		}
		fields.Gender = &sql.NullString{String: s, Valid: true}

	case "age":
		v, ok := toNumber(value)
		if !ok {
			return "age must be a number"
		}
		if v != math.Trunc(v) {
			return "age must be an integer"
		}
		if v < 0 || v > 120 {
			return "age must be between 0 and 120"
		}
		fields.Age = &sql.NullInt64{Int64: int64(v), Valid: true}

	default:
		v, ok := toNumber(value)
		if !ok {
			return key + " must be a number"
		}
		bounds := numericRanges[key]
		if v < bounds[0] || v > bounds[1] {
			return fmt.Sprintf("%s must be between %g and %g", key, bounds[0], bounds[1])
		}
		setNumeric(fields, key, v)
	}
	return ""
}

func setNull(fields *Fields, key string) {
	switch key {
	case "display_name":
		fields.DisplayName = &sql.NullString{}
	case "age":
		fields.Age = &sql.NullInt64{}
	case "gender":
		fields.Gender = &sql.NullString{}
	case "height_cm":
		fields.HeightCm = &sql.NullFloat64{}
	case "weight_kg":
		fields.WeightKg = &sql.NullFloat64{}
	case "body_fat_percent":
		fields.BodyFatPercent = &sql.NullFloat64{}
	case "shoulder_circumference_cm":
		fields.ShoulderCircumferenceCm = &sql.NullFloat64{}
	case "waist_cm":
		fields.WaistCm = &sql.NullFloat64{}
	case "hips_cm":
		fields.HipsCm = &sql.NullFloat64{}
	case "notes":
		fields.Notes = &sql.NullString{}
	}
}

func setNumeric(fields *Fields, key string, v float64) {
	value := &sql.NullFloat64{Float64: v, Valid: true}
	switch key {
	case "height_cm":
		fields.HeightCm = value
	case "weight_kg":
		fields.WeightKg = value
	case "body_fat_percent":
		fields.BodyFatPercent = value
	case "shoulder_circumference_cm":
		fields.ShoulderCircumferenceCm = value
	case "waist_cm":
		fields.WaistCm = value
	case "hips_cm":
		fields.HipsCm = value
	}
}

func validGender(s string) bool {
	for _, g := range Genders {
		if s == g {
			return true
		}
	}
	return false
}

// toNumber coerces a decoded JSON value to float64. Numeric strings such as
// "172.5" are accepted.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
