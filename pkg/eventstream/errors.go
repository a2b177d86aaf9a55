package eventstream

import "errors"

// ErrNilEvent indicates a nil state saved event was provided to a publisher.
var ErrNilEvent = errors.New("nil state saved event")
