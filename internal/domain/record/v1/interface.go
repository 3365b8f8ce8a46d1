package recordv1

import "context"

// Driver stores serialized records. Implementations return ErrNotFound when nothing
// is stored under a locator and wrap backend failures with ErrIO. Drivers do no
// locking; writers are serialized by the task queue.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=recordv1_mock
type Driver interface {
	Load(ctx context.Context, loc Locator) ([]byte, error)
	Save(ctx context.Context, loc Locator, data []byte) error
}
