package authorization

import (
	"context"
	"errors"

	"github.com/smallbiznis/aquaflow/internal/operatorcontext"
)

type Service interface {
	// Authorize checks that the operator's role may perform action on object.
	Authorize(ctx context.Context, op operatorcontext.Operator, object string, action string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)
