package backend

import (
	"bytes"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/types"
)

// Failure is the Err side of a Result: what the backend said when it
// refused a request.
type Failure struct {
	Status  int
	Code    string
	Message string
}

// Result is the tagged form of a backend envelope. Exactly one of Ok and
// Err reports true.
type Result[T any] struct {
	ok      bool
	data    T
	failure Failure
}

func Ok[T any](data T) Result[T] {
	return Result[T]{ok: true, data: data}
}

func Err[T any](failure Failure) Result[T] {
	return Result[T]{failure: failure}
}

func (r Result[T]) Ok() (T, bool) {
	return r.data, r.ok
}

func (r Result[T]) Err() (Failure, bool) {
	return r.failure, !r.ok
}

// Unwrap converts the result into Go's (value, error) form. Failures become
// typed errors carrying the backend message.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.data, nil
	}
	var zero T
	return zero, r.failure.toError()
}

func (f Failure) toError() *pkgerrors.Error {
	details := pkgerrors.BackendDetails{Status: f.Status, Code: f.Code, Message: f.Message}
	switch f.Status {
	case http.StatusUnauthorized:
		msg := f.Message
		if msg == "" {
			msg = "session expired, please sign in again"
		}
		return pkgerrors.New(pkgerrors.CodeUnauthorized, msg).WithDetails(details)
	case http.StatusNotFound:
		msg := f.Message
		if msg == "" {
			msg = "resource not found"
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, msg).WithDetails(details)
	}
	return pkgerrors.New(pkgerrors.CodeRejected, f.Message).WithDetails(details)
}

// ResultFrom builds a Result from a decoded envelope. The error return is
// reserved for success envelopes whose data does not decode into T.
func ResultFrom[T any](env types.BackendEnvelope, status int) (Result[T], error) {
	if !env.Success {
		return Err[T](Failure{Status: status, Code: env.Code, Message: env.Message}), nil
	}
	var data T
	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return Ok(data), nil
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return Result[T]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return Ok(data), nil
}
