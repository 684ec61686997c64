// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package demo

import (
	"github.com/AleutianAI/StreamlitLike/services/webapp/datatypes"
)

// Calculate applies operation to first and second.
//
// Division by zero and unknown operations both yield 0; neither is an
// error.
func Calculate(first, second float64, operation string) datatypes.CalculationResult {
	var result float64
	switch operation {
	case datatypes.OperationAdd:
		result = first + second
	case datatypes.OperationSubtract:
		result = first - second
	case datatypes.OperationMultiply:
		result = first * second
	case datatypes.OperationDivide:
		if second != 0 {
			result = first / second
		}
	}

	return datatypes.CalculationResult{
		Result:       result,
		Operation:    OperationSymbol(operation),
		FirstNumber:  first,
		SecondNumber: second,
	}
}

// OperationSymbol returns the display symbol for operation. Unknown
// operations display as "+".
func OperationSymbol(operation string) string {
	switch operation {
	case datatypes.OperationSubtract:
		return "-"
	case datatypes.OperationMultiply:
		return "×"
	case datatypes.OperationDivide:
		return "÷"
	default:
		return "+"
	}
}
