package service

import (
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/settleup/internal/apperrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks the validate tags of a request message.
func validateRequest(msg any) error {
	if err := validate.Struct(msg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("%s failed on %q: %w", first.Namespace(), first.Tag(), apperrors.ErrValidation))
		}
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// toConnectError maps an error kind to its connect code. Store failures are
// logged and reported without their driver details.
func toConnectError(op string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, apperrors.ErrInvalidState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, apperrors.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
}
