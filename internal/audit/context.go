package audit

import "context"

type actorKey struct{}

// WithActor stamps the authenticated staff username onto the context so
// mutation paths can attribute trail entries.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the staff username stamped by WithActor, or ""
// when the request was not authenticated.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
