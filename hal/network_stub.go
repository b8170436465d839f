package hal

import "context"

type nullNetwork struct{}

func (nullNetwork) Connected() bool { return false }

func (nullNetwork) Reconnect(ctx context.Context) error {
	_ = ctx
	return ErrNotImplemented
}
