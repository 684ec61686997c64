// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package demo implements the widget demo page: the user form bound to
// session state, and the four-operation calculator.
package demo

import (
	"github.com/AleutianAI/StreamlitLike/pkg/state"
	"github.com/AleutianAI/StreamlitLike/services/webapp/datatypes"
)

// Defaults shown before the user submits the form.
const (
	DefaultUserName      = ""
	DefaultUserAge       = 25.0
	DefaultFavoriteColor = "Blue"
)

// Static summary figures displayed on the demo page.
const (
	summaryTotalUsers       = 156
	summaryAverageAge       = 32.4
	summaryMostPopularColor = "Blue"
)

// ColorOptions lists the selectable favorite colors.
func ColorOptions() []string {
	return []string{"Red", "Blue", "Green", "Yellow", "Purple", "Orange"}
}

// OperationOptions lists the calculator operations.
func OperationOptions() []string {
	return []string{
		datatypes.OperationAdd,
		datatypes.OperationSubtract,
		datatypes.OperationMultiply,
		datatypes.OperationDivide,
	}
}

// HomeView returns the landing page model.
func HomeView() datatypes.HomeView {
	return datatypes.HomeView{
		Title:       "Welcome to the StreamlitLike Go App",
		Description: "Build interactive web applications with Go, similar to Python's Streamlit",
	}
}

// PrivacyView returns the privacy page model.
func PrivacyView() datatypes.PrivacyView {
	return datatypes.PrivacyView{
		Title: "Privacy Policy",
		Points: []string{
			"The session cookie carries a random session ID and nothing else.",
			"Form values are held in memory for your session only and are never written to disk.",
			"Ending the session or leaving it idle discards every stored value.",
		},
	}
}

// ApplyUserData writes the submitted form fields into svc.
//
// Values are stored as plain string and float64. Omitted fields reach the
// state service as nil and therefore leave any stored value in place.
func ApplyUserData(svc *state.Service, req datatypes.UserDataRequest) datatypes.UserDataResponse {
	setField(svc, datatypes.KeyUserName, req.UserName)
	setField(svc, datatypes.KeyUserAge, req.UserAge)
	setField(svc, datatypes.KeyFavoriteColor, req.FavoriteColor)

	return datatypes.UserDataResponse{
		Success:       true,
		Message:       "Data saved successfully",
		UserName:      userName(svc),
		UserAge:       userAge(svc),
		FavoriteColor: favoriteColor(svc),
	}
}

// BuildDemoView reads the demo page model from svc.
func BuildDemoView(svc *state.Service) datatypes.DemoView {
	return datatypes.DemoView{
		UserName:          userName(svc),
		UserAge:           userAge(svc),
		FavoriteColor:     favoriteColor(svc),
		ColorOptions:      ColorOptions(),
		OperationOptions:  OperationOptions(),
		FirstNumber:       10,
		SecondNumber:      5,
		SelectedOperation: datatypes.OperationAdd,
		TotalUsers:        summaryTotalUsers,
		AverageAge:        summaryAverageAge,
		MostPopularColor:  summaryMostPopularColor,
	}
}

func setField[T any](svc *state.Service, key string, v *T) {
	if v == nil {
		state.SetState(svc, key, v)
		return
	}
	state.SetState(svc, key, *v)
}

func userName(svc *state.Service) string {
	return state.GetState(svc, datatypes.KeyUserName, DefaultUserName)
}

func userAge(svc *state.Service) float64 {
	return state.GetState(svc, datatypes.KeyUserAge, DefaultUserAge)
}

func favoriteColor(svc *state.Service) string {
	return state.GetState(svc, datatypes.KeyFavoriteColor, DefaultFavoriteColor)
}
