// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package demo

import (
	"testing"

	"github.com/AleutianAI/StreamlitLike/pkg/state"
	"github.com/AleutianAI/StreamlitLike/services/webapp/datatypes"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

// =============================================================================
// Demo View Tests
// =============================================================================

func TestBuildDemoView_Defaults(t *testing.T) {
	view := BuildDemoView(state.NewService(nil))

	assert.Equal(t, "", view.UserName)
	assert.Equal(t, 25.0, view.UserAge)
	assert.Equal(t, "Blue", view.FavoriteColor)
	assert.Equal(t, []string{"Red", "Blue", "Green", "Yellow", "Purple", "Orange"}, view.ColorOptions)
	assert.Equal(t, []string{"Add", "Subtract", "Multiply", "Divide"}, view.OperationOptions)
	assert.Equal(t, 10.0, view.FirstNumber)
	assert.Equal(t, 5.0, view.SecondNumber)
	assert.Equal(t, "Add", view.SelectedOperation)
	assert.Equal(t, 156, view.TotalUsers)
	assert.Equal(t, 32.4, view.AverageAge)
	assert.Equal(t, "Blue", view.MostPopularColor)
}

func TestApplyUserData_StoresPlainValues(t *testing.T) {
	svc := state.NewService(nil)

	resp := ApplyUserData(svc, datatypes.UserDataRequest{
		UserName:      ptr("Alice"),
		UserAge:       ptr(30.0),
		FavoriteColor: ptr("Green"),
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "Data saved successfully", resp.Message)
	assert.Equal(t, "Alice", resp.UserName)
	assert.Equal(t, "Alice", state.GetState(svc, "userName", ""))
	assert.Equal(t, 30.0, state.GetState(svc, "userAge", 0.0))
	assert.Equal(t, "Green", state.GetState(svc, "favoriteColor", ""))

	view := BuildDemoView(svc)
	assert.Equal(t, "Alice", view.UserName)
	assert.Equal(t, 30.0, view.UserAge)
	assert.Equal(t, "Green", view.FavoriteColor)
}

func TestApplyUserData_OmittedFieldsKeepPreviousValues(t *testing.T) {
	svc := state.NewService(nil)
	ApplyUserData(svc, datatypes.UserDataRequest{UserName: ptr("Alice"), FavoriteColor: ptr("Red")})

	resp := ApplyUserData(svc, datatypes.UserDataRequest{UserAge: ptr(41.0)})

	assert.Equal(t, "Alice", resp.UserName)
	assert.Equal(t, 41.0, resp.UserAge)
	assert.Equal(t, "Red", resp.FavoriteColor)
}

func TestApplyUserData_EmptyRequestStoresNothing(t *testing.T) {
	svc := state.NewService(nil)

	resp := ApplyUserData(svc, datatypes.UserDataRequest{})

	assert.Equal(t, 0, svc.State().Len())
	assert.Equal(t, 25.0, resp.UserAge)
	assert.Equal(t, "Blue", resp.FavoriteColor)
}

func TestBuildDemoView_WrongTypeFallsBack(t *testing.T) {
	svc := state.NewService(nil)
	state.SetState(svc, "userAge", "thirty")

	assert.Equal(t, 25.0, BuildDemoView(svc).UserAge)
}

func TestHomeView(t *testing.T) {
	view := HomeView()
	assert.NotEmpty(t, view.Title)
	assert.Contains(t, view.Description, "Streamlit")
}

func TestPrivacyView(t *testing.T) {
	view := PrivacyView()
	assert.Equal(t, "Privacy Policy", view.Title)
	assert.Len(t, view.Points, 3)
}

// =============================================================================
// Calculator Tests
// =============================================================================

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		first     float64
		second    float64
		operation string
		want      float64
		symbol    string
	}{
		{"add", 10, 5, "Add", 15, "+"},
		{"subtract", 10, 5, "Subtract", 5, "-"},
		{"multiply", 10, 5, "Multiply", 50, "×"},
		{"divide", 10, 4, "Divide", 2.5, "÷"},
		{"divide by zero", 10, 0, "Divide", 0, "÷"},
		{"unknown operation", 10, 5, "Modulo", 0, "+"},
		{"empty operation", 10, 5, "", 0, "+"},
		{"case sensitive", 10, 5, "add", 0, "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.first, tt.second, tt.operation)
			assert.Equal(t, tt.want, got.Result)
			assert.Equal(t, tt.symbol, got.Operation)
			assert.Equal(t, tt.first, got.FirstNumber)
			assert.Equal(t, tt.second, got.SecondNumber)
		})
	}
}
