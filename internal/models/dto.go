package models

import "time"

// ErrorResponse is the common error payload returned by the HTTP layer.
type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code,omitempty"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path,omitempty"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type ValidationErrorResponse struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}
