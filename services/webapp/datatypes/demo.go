// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// State keys written by the user form.
const (
	KeyUserName      = "userName"
	KeyUserAge       = "userAge"
	KeyFavoriteColor = "favoriteColor"
)

// Operation names accepted by the calculator.
const (
	OperationAdd      = "Add"
	OperationSubtract = "Subtract"
	OperationMultiply = "Multiply"
	OperationDivide   = "Divide"
)

var demoValidate = validator.New()

// HomeView is the landing page model.
type HomeView struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PrivacyView is the privacy page model.
type PrivacyView struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// DemoView is the widget demo page model.
type DemoView struct {
	UserName          string   `json:"user_name"`
	UserAge           float64  `json:"user_age"`
	FavoriteColor     string   `json:"favorite_color"`
	ColorOptions      []string `json:"color_options"`
	OperationOptions  []string `json:"operation_options"`
	FirstNumber       float64  `json:"first_number"`
	SecondNumber      float64  `json:"second_number"`
	SelectedOperation string   `json:"selected_operation"`
	TotalUsers        int      `json:"total_users"`
	AverageAge        float64  `json:"average_age"`
	MostPopularColor  string   `json:"most_popular_color"`
}

// UserDataRequest is the user form submission.
//
// Fields are optional pointers so an omitted field reaches the state
// service as nil and leaves the stored value untouched.
type UserDataRequest struct {
	UserName      *string  `json:"user_name" form:"userName" validate:"omitnil,max=256"`
	UserAge       *float64 `json:"user_age" form:"userAge" validate:"omitnil,gte=0,lte=150"`
	FavoriteColor *string  `json:"favorite_color" form:"favoriteColor" validate:"omitnil,max=64"`
}

// Validate checks field bounds.
func (r *UserDataRequest) Validate() error {
	return demoValidate.Struct(r)
}

// UserDataResponse echoes what was saved.
type UserDataResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	UserName      string  `json:"user_name"`
	UserAge       float64 `json:"user_age"`
	FavoriteColor string  `json:"favorite_color"`
}

// CalculateRequest is a calculator submission. Operation is not
// restricted; unknown operations evaluate to 0.
type CalculateRequest struct {
	FirstNumber  float64 `json:"first_number" form:"firstNumber"`
	SecondNumber float64 `json:"second_number" form:"secondNumber"`
	Operation    string  `json:"operation" form:"operation" validate:"max=32"`
}

// Validate checks field bounds.
func (r *CalculateRequest) Validate() error {
	return demoValidate.Struct(r)
}

// CalculationResult is the calculator output.
type CalculationResult struct {
	Result       float64 `json:"result"`
	Operation    string  `json:"operation"`
	FirstNumber  float64 `json:"first_number"`
	SecondNumber float64 `json:"second_number"`
}
