package system

import "context"

// Service represents a lifecycle-managed component. Long-running modules
// implement this interface so the registry can start and stop them
// deterministically.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
