package push

import "errors"

// ErrProviderUnavailable wraps transient provider failures.
var ErrProviderUnavailable = errors.New("push: provider unavailable")
