package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/folioforge/go-folio/internal/lifecycle"
)

// Text codes attached to wrapped command errors.
const (
	CodeValidation     = "FOLIO_COMMAND_INVALID"
	CodeCanceled       = "FOLIO_COMMAND_CANCELED"
	CodeTimeout        = "FOLIO_COMMAND_TIMEOUT"
	CodeContext        = "FOLIO_COMMAND_CONTEXT"
	CodeNotFound       = "FOLIO_RECORD_NOT_FOUND"
	CodeTemplate       = "FOLIO_TEMPLATE_REQUIRED"
	CodeDeployStatus   = "FOLIO_DEPLOYMENT_STATUS_INVALID"
	CodeExecuteFailure = "FOLIO_COMMAND_FAILED"
)

// WrapValidationError tags message validation failures.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(CodeValidation)
}

// WrapContextError tags cancellation and deadline failures.
func WrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(CodeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(CodeContext)
	}
}

// WrapExecuteError tags failures returned by the wrapped command function.
// Lifecycle input errors are reported as validation failures with their own codes.
func WrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case lifecycle.IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command target not found").
			WithTextCode(CodeNotFound)
	case errors.Is(err, lifecycle.ErrTemplateRequired):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "template id is required").
			WithTextCode(CodeTemplate)
	case errors.Is(err, lifecycle.ErrInvalidDeploymentStatus):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "deployment status is invalid").
			WithTextCode(CodeDeployStatus)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(CodeExecuteFailure)
	}
}
