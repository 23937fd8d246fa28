// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package validation wraps a shared go-playground/validator instance.
//
// The validator is built once and caches struct metadata, so every caller
// (marker pipeline, HTTP handlers, bridge messages) goes through
// GetValidator or ValidateStruct. Field names in errors use the json tag
// name so messages line up with what clients actually sent.
//
// Custom tags:
//   - category: string names one of the registry categories
//   - finite:   float is neither NaN nor infinite
//
// Example:
//
//	type markersQuery struct {
//	    Category string `json:"category" validate:"required,category"`
//	    Limit    int    `json:"limit" validate:"min=1,max=500"`
//	}
//	if err := validation.ValidateStruct(&q); err != nil {
//	    apiErr := err.ToAPIError()
//	    ...
//	}
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/pawmap/internal/registry"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single failed field check.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the json name of the field that failed.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the tag parameter, e.g. "500" for "max=500".
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the offending value.
func (e *ValidationError) Value() interface{} {
	return e.value
}

func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects every failed field of one struct.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual field failures.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Tags returns the distinct failed tags in order of first appearance.
func (ve *RequestValidationError) Tags() []string {
	seen := make(map[string]bool, len(ve.errors))
	var tags []string
	for _, e := range ve.errors {
		if !seen[e.tag] {
			seen[e.tag] = true
			tags = append(tags, e.tag)
		}
	}
	return tags
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors the api package error body without importing it.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the failures into a VALIDATION_ERROR body.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{Code: "VALIDATION_ERROR", Message: "Validation failed"}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: err.message,
			Details: map[string]interface{}{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	messages := make([]string, 0, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		messages = append(messages, fmt.Sprintf("%s: %s", err.field, err.message))
	}
	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		mustRegister(v, "category", validateCategory)
		mustRegister(v, "finite", validateFinite)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateCategory(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, ok := registry.Parse(fl.Field().String())
	return ok
}

func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// ValidateStruct validates s with the shared validator. It returns nil on
// success and never returns a typed nil.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"category":  "%s must be one of: grooming, cafe, hospital, hotel",
	"finite":    "%s must be a finite number",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
