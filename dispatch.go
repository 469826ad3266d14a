/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commissaire

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/commissaire/errors"
)

// Operation names a storage service operation.
type Operation string

const (
	OpSave              Operation = "save"
	OpGet               Operation = "get"
	OpDelete            Operation = "delete"
	OpList              Operation = "list"
	OpListStoreHandlers Operation = "list_store_handlers"
)

// ParseOperation returns the Operation named by s.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpSave, OpGet, OpDelete, OpList, OpListStoreHandlers:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q", s)
	}
}

// UnmarshalText rejects unknown operation names.
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Request is a storage request as received from a transport.
type Request struct {
	ID        string          `json:"id,omitempty"`
	Operation Operation       `json:"operation"`
	ModelType string          `json:"model_type,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Secure    bool            `json:"secure,omitempty"`
}

// Error kinds reported in ErrorBody.Kind
const (
	ErrorKindConfiguration = "configuration"
	ErrorKindValidation    = "validation"
	ErrorKindMalformed     = "malformed"
	ErrorKindLookup        = "lookup"
	ErrorKindNotFound      = "not_found"
	ErrorKindInternal      = "internal"
)

// ErrorBody carries a failed request's error.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response answers a Request. Exactly one of Result and Error is set, except
// for a successful delete, which sets neither.
type Response struct {
	ID     string     `json:"id"`
	Result any        `json:"result,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorKind classifies err for transport.
func ErrorKind(err error) string {
	switch {
	case errors.IsConfigurationError(err):
		return ErrorKindConfiguration
	case errors.IsValidationError(err):
		return ErrorKindValidation
	case errors.IsMalformed(err):
		return ErrorKindMalformed
	case errors.IsLookupFailure(err):
		return ErrorKindLookup
	case errors.IsNotFound(err):
		return ErrorKindNotFound
	default:
		return ErrorKindInternal
	}
}

// Handle performs req and wraps the outcome in a Response. A request without
// an ID is given a random one.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result, err := s.dispatch(ctx, req)
	if err != nil {
		s.logger.Warn("storage request failed",
			zap.String("id", req.ID),
			zap.String("operation", string(req.Operation)),
			zap.String("model_type", req.ModelType),
			zap.Error(err))
		return Response{ID: req.ID, Error: &ErrorBody{Kind: ErrorKind(err), Message: err.Error()}}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Service) dispatch(ctx context.Context, req Request) (any, error) {
	var opts []CallOption
	if req.Secure {
		opts = append(opts, WithSecure())
	}

	var data any
	if len(req.Data) > 0 {
		data = []byte(req.Data)
	}

	switch req.Operation {
	case OpSave:
		return s.Save(ctx, req.ModelType, data, opts...)
	case OpGet:
		return s.Get(ctx, req.ModelType, data, opts...)
	case OpDelete:
		return nil, s.Delete(ctx, req.ModelType, data)
	case OpList:
		return s.List(ctx, req.ModelType, opts...)
	case OpListStoreHandlers:
		return s.ListStoreHandlers(), nil
	default:
		return nil, errors.NewMalformedError("request", fmt.Sprintf("unknown operation %q", req.Operation))
	}
}
