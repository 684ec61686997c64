// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestUserDataRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UserDataRequest
		wantErr bool
	}{
		{"empty request", UserDataRequest{}, false},
		{"all fields", UserDataRequest{UserName: ptr("Alice"), UserAge: ptr(30.0), FavoriteColor: ptr("Red")}, false},
		{"empty name allowed", UserDataRequest{UserName: ptr("")}, false},
		{"name too long", UserDataRequest{UserName: ptr(strings.Repeat("a", 257))}, true},
		{"negative age", UserDataRequest{UserAge: ptr(-1.0)}, true},
		{"age too large", UserDataRequest{UserAge: ptr(151.0)}, true},
		{"color too long", UserDataRequest{FavoriteColor: ptr(strings.Repeat("c", 65))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCalculateRequest_Validate(t *testing.T) {
	ok := CalculateRequest{FirstNumber: 1, SecondNumber: 2, Operation: OperationAdd}
	assert.NoError(t, ok.Validate())

	unknown := CalculateRequest{Operation: "Modulo"}
	assert.NoError(t, unknown.Validate(), "unknown operations are evaluated, not rejected")

	tooLong := CalculateRequest{Operation: strings.Repeat("x", 33)}
	assert.Error(t, tooLong.Validate())
}
