package validation

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Violations struct {
	Errors map[string][]error
}

func (violations Violations) MarshalJSON() ([]byte, error) {
	errors := make(map[string][]string)
	for fieldName, fieldErrors := range violations.Errors {
		errors[fieldName] = make([]string, len(fieldErrors))
		for index, fieldError := range fieldErrors {
			errors[fieldName][index] = fieldError.Error()
		}
	}

	return json.Marshal(map[string]map[string][]string{
		"errors": errors,
	})
}

func (violations Violations) IsEmpty() bool {
	return len(violations.Errors) == 0
}

// Fields returns the names of the invalid fields in sorted order.
func (violations Violations) Fields() []string {
	fields := make([]string, 0, len(violations.Errors))
	for name := range violations.Errors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

func (violations Violations) Error() string {
	parts := make([]string, 0, len(violations.Errors))
	for _, name := range violations.Fields() {
		for _, err := range violations.Errors[name] {
			parts = append(parts, err.Error())
		}
	}
	return "validation: " + strings.Join(parts, "; ")
}

// ValidateValues checks the first value of each field named in rules.
// Absent fields validate as the empty string.
func ValidateValues(values url.Values, rules map[string][]string) Violations {
	data := make(map[string]string, len(rules))
	for name := range rules {
		if values.Has(name) {
			data[name] = values.Get(name)
		}
	}

	return ValidateMap(data, rules)
}

// ValidateMap applies rules to data. Supported rules are required, integer,
// numeric, min:N and max:N (length for strings, value for integer or numeric
// fields) and in:a,b,c. Optional fields that are absent skip every rule.
func ValidateMap(data map[string]string, rules map[string][]string) Violations {
	var violations Violations
	violations.Errors = make(map[string][]error)

	for attributeName, attributeRules := range rules {
		attributeValue, present := data[attributeName]
		if !present && !slices.Contains(attributeRules, "required") {
			continue
		}

		numeric := slices.Contains(attributeRules, "integer") || slices.Contains(attributeRules, "numeric")

		var errorCollection []error
		for _, attributeRule := range attributeRules {
			if err := validate(attributeRule, attributeName, attributeValue, numeric); err != nil {
				errorCollection = append(errorCollection, err)
			}
		}

		if len(errorCollection) != 0 {
			violations.Errors[attributeName] = errorCollection
		}
	}

	return violations
}

func validate(rule string, name string, value string, numeric bool) error {
	rule, argument, _ := strings.Cut(rule, ":")

	switch rule {
	case "required":
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	case "integer":
		if !ValidateInteger(value) {
			return fmt.Errorf("%s must be an integer", name)
		}
	case "numeric":
		if !ValidateNumeric(value) {
			return fmt.Errorf("%s must be a number", name)
		}
	case "min", "max":
		limit, err := strconv.ParseFloat(argument, 64)
		if err != nil {
			return fmt.Errorf("invalid validation rule :: %s:%s", rule, argument)
		}

		size := float64(utf8.RuneCountInString(value))
		if numeric {
			if size, err = strconv.ParseFloat(value, 64); err != nil {
				// Reported by the integer or numeric rule.
				return nil
			}
		}

		if rule == "min" && size < limit {
			return fmt.Errorf("%s must be at least %s", name, argument)
		}
		if rule == "max" && size > limit {
			return fmt.Errorf("%s may not be greater than %s", name, argument)
		}
	case "in":
		if !slices.Contains(strings.Split(argument, ","), value) {
			return fmt.Errorf("%s must be one of %s", name, argument)
		}
	default:
		return fmt.Errorf("invalid validation rule :: %s", rule)
	}

	return nil
}

func ValidateInteger(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}

func ValidateNumeric(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}
