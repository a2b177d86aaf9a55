package dotdir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFile   = "lock"
	holderFile = "lock.holder"

	lockPollInterval = 50 * time.Millisecond
)

// ErrLockTimeout is returned when the repository lock cannot be acquired
// before the timeout elapses.
var ErrLockTimeout = errors.New("timed out waiting for repository lock")

// Lock acquires the exclusive repository lock in dir. It polls until the lock
// is free, the context is done, or timeout elapses. A zero timeout waits for
// the context only.
//
// The lock is an advisory lock held by the kernel on dir/lock, so it is
// released when the holding process exits, however it exits. The lock file
// itself is never removed. The returned release func is safe to call more
// than once.
func Lock(ctx context.Context, dir string, timeout time.Duration) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory %s: %w", dir, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fl := flock.New(filepath.Join(dir, lockFile))

	ok, err := fl.TryLockContext(ctx, lockPollInterval)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: held by %s", ErrLockTimeout, holderOrUnknown(dir))
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("acquiring repository lock: %w", err)
	case !ok:
		return nil, fmt.Errorf("%w: held by %s", ErrLockTimeout, holderOrUnknown(dir))
	}

	holder := filepath.Join(dir, holderFile)
	if err := os.WriteFile(holder, []byte(lockHolder()), 0o644); err != nil { //nolint:gosec // holder info
		_ = fl.Unlock()
		return nil, fmt.Errorf("writing lock holder: %w", err)
	}

	return sync.OnceValue(func() error {
		rmErr := os.Remove(holder)
		if errors.Is(rmErr, os.ErrNotExist) {
			rmErr = nil
		}
		if err := errors.Join(rmErr, fl.Unlock()); err != nil {
			return fmt.Errorf("releasing repository lock: %w", err)
		}
		return nil
	}), nil
}

// LockHolder returns the "host:pid" of the process holding the lock of dir,
// or "" when the lock is free. A holder that died without releasing leaves a
// stale record behind, which the next Lock overwrites.
func LockHolder(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, holderFile))
	if err != nil {
		return ""
	}
	return string(data)
}

func holderOrUnknown(dir string) string {
	if h := LockHolder(dir); h != "" {
		return h
	}
	return "unknown process"
}

func lockHolder() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return host + ":" + strconv.Itoa(os.Getpid())
}
