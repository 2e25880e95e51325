// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"
)

// TraceID returns a dashless UUIDv4, used to make trace log names unique.
func TraceID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// HasHTTPScheme reports whether s already carries an http:// or
// https:// prefix.
func HasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func TranslateFormat(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	default:
		return "short"
	}
}

// Render serializes v in the requested format ("json", "yaml" or
// "short"); short prints the value with %+v.
func Render(v interface{}, format string) (string, error) {
	switch TranslateFormat(format) {
	case "json":
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("json marshal failed: %w", err)
		}
		return PrettyJSON(b), nil
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("yaml marshal failed: %w", err)
		}
		return string(b), nil
	default:
		return fmt.Sprintf("%+v", v), nil
	}
}

func PrettyJSON(b []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return string(b) // fallback non indentato
	}
	return out.String()
}
