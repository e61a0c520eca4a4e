package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	BackendStatus  int    `json:"backend_status,omitempty"`
	BackendCode    string `json:"backend_code,omitempty"`
	BackendMessage string `json:"backend_message,omitempty"`
}

// BackendDetails is attached to errors produced from backend responses.
type BackendDetails struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
		if te, ok := e.(*Error); ok {
			if details, ok := te.Details().(BackendDetails); ok && d.BackendStatus == 0 {
				d.BackendStatus = details.Status
				d.BackendCode = details.Code
				d.BackendMessage = details.Message
			}
		}
	}

	return d
}
