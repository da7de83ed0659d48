// Package validator provides small composable validation rules.
//
// Each Rule pairs a deferred check with the error to report. Apply runs all
// of them and returns ValidationErrors describing every failure, so clients
// see all field problems at once.
//
//	err := validator.Apply(
//		validator.RequiredString("username", in.Username),
//		validator.MaxLenString("username", in.Username, 64),
//		validator.ValidOTPCode("code", in.Code),
//	)
package validator
