package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelope is the uniform response wrapper all API endpoints emit.
type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *envelopeError `json:"error,omitempty"`
}

type envelopeError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the envelope structure.
// Registered as a huma transformer so handlers return bare DTOs.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return envelope{
			Success: false,
			Error: &envelopeError{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			},
		}, nil
	}

	return envelope{Success: true, Data: v}, nil
}
