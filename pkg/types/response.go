package types

import "encoding/json"

// SuccessEnvelope wraps payloads served by the callback server.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// BackendEnvelope is the storefront backend's response shape:
// {success, data, message, code}. Data is kept raw until the caller knows
// the concrete type.
type BackendEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
}
