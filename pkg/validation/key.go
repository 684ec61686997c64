// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided identifiers before they reach
// logs or state.
//
// The state store itself accepts any string key. These validators apply to
// keys that arrive from outside the process, such as URL path segments,
// so that log lines and metrics never carry control characters or
// unbounded input.
package validation

import (
	"fmt"
)

// MaxStateKeyLength bounds externally supplied state keys.
const MaxStateKeyLength = 128

// ValidateStateKey validates a state key taken from a request.
//
// Valid keys:
//   - 1-128 bytes
//   - Letters and digits
//   - Underscore, hyphen, dot and colon
//
// Example:
//
//	if err := validation.ValidateStateKey(c.Param("key")); err != nil {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	    return
//	}
func ValidateStateKey(key string) error {
	if key == "" {
		return fmt.Errorf("state key cannot be empty")
	}
	if len(key) > MaxStateKeyLength {
		return fmt.Errorf("state key is %d bytes (max %d)", len(key), MaxStateKeyLength)
	}
	for i := 0; i < len(key); i++ {
		if !isKeyByte(key[i]) {
			return fmt.Errorf("invalid state key %q (allowed: letters, digits, '_', '-', '.', ':')", key)
		}
	}
	return nil
}

func isKeyByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '-' || b == '.' || b == ':':
		return true
	}
	return false
}
