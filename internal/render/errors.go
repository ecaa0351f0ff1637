package render

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile is matched by every *CompileError.
	ErrCompile = errors.New("render: compile failed")
	// ErrRender is matched by every *RenderError.
	ErrRender = errors.New("render: execution failed")
	// ErrUnknownHelper is returned when a template calls an unregistered helper.
	ErrUnknownHelper = errors.New("render: unknown helper")
	// ErrDuplicateHelper is returned when a helper name is registered twice.
	ErrDuplicateHelper = errors.New("render: duplicate helper")
)

// CompileError reports malformed template source. Line and Column are 1-based.
type CompileError struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("render: compile: %d:%d: %s", e.Line, e.Column, e.Message)
}

func (e *CompileError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCompile, e.Err}
	}
	return []error{ErrCompile}
}

// RenderError reports a failure while executing a compiled template, such as
// a helper returning an error.
type RenderError struct {
	Key   string
	Cause error
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return "render: execute " + e.Key
	}
	return fmt.Sprintf("render: execute %s: %v", e.Key, e.Cause)
}

func (e *RenderError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrRender, e.Cause}
	}
	return []error{ErrRender}
}
