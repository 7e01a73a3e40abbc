package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the value of the "v" field clients check before decoding.
const EnvelopeVersion = 1

// Envelope wraps every JSON response body.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps handler output and
// errors in an Envelope. ctx may be nil.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *Envelope:
		return body, nil
	case *APIError:
		return &Envelope{
			V:       EnvelopeVersion,
			Success: false,
			Error:   body.Message,
			Code:    body.Code,
			Details: body.Details,
		}, nil
	}

	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}
	return &Envelope{
		V:       EnvelopeVersion,
		Success: code < 400,
		Data:    v,
	}, nil
}
