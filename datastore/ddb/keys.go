/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strings"
)

// Key template macros
const (
	macroType = "type"
	macroKey  = "key"
)

var macroPattern = regexp.MustCompile(`{([^}]*)}`)

// expandMacros replaces each "{name}" in template with values[name].
// Unknown macros expand to the empty string.
func expandMacros(template string, values map[string]string) string {
	return macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
		return values[strings.Trim(macro, "{}")]
	})
}

// checkTemplate reports a template that is empty or uses a macro outside allowed.
func checkTemplate(template string, allowed ...string) error {
	if strings.TrimSpace(template) == "" {
		return fmt.Errorf("template is empty")
	}
	for _, m := range macroPattern.FindAllStringSubmatch(template, -1) {
		ok := false
		for _, a := range allowed {
			if m[1] == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("unsupported macro %q, expected one of %v", m[0], allowed)
		}
	}
	return nil
}
