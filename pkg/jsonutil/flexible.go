// Package jsonutil decodes loosely-typed scalars from model output.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling cases where
// models return numbers or booleans instead of strings. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// StrictString decodes raw only if it is a JSON string.
func StrictString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected string, got %s", truncate(raw))
	}
	return s, nil
}

// FlexibleFloat accepts a JSON number or a string holding a number ("0.8").
// Anything else is an error.
func FlexibleFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing number")
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal, nil
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		f, perr := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
		if perr != nil {
			return 0, fmt.Errorf("non-numeric string %q", strVal)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("non-finite number %q", strVal)
		}
		return f, nil
	}

	return 0, fmt.Errorf("expected number, got %s", truncate(raw))
}

// FlexibleInt is FlexibleFloat truncated toward zero.
func FlexibleInt(raw json.RawMessage) (int, error) {
	f, err := FlexibleFloat(raw)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// FlexibleBool accepts true/false or the strings "true"/"false"/"yes"/"no".
// Missing or unrecognised values are false.
func FlexibleBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(FlexibleStringValue(raw))) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func truncate(raw json.RawMessage) string {
	if len(raw) > 40 {
		return string(raw[:40]) + "..."
	}
	return string(raw)
}
