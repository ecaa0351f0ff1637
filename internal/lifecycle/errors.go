package lifecycle

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateRequired        = errors.New("lifecycle: template id is required")
	ErrInvalidDeploymentStatus = errors.New("lifecycle: invalid deployment status")
)

// NotFoundError reports a missing portfolio, version or deployment.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
