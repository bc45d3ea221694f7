package contract

import "context"

// SessionLocker serializes work on one conversation. The returned func releases the lock.
type SessionLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
