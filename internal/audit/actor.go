package audit

import "context"

type actorKey struct{}

// WithActor records the user acting in ctx so events can be attributed.
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns nil for anonymous and background work.
func ActorFrom(ctx context.Context) *uint {
	id, ok := ctx.Value(actorKey{}).(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}
