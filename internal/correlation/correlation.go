// Package correlation propagates the request correlation id through contexts
// and onto every outbound collaborator call.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const Header = "X-Correlation-ID"

type ctxKey struct{}

// NewContext stores id on ctx. Empty ids are minted so every request carries
// one.
func NewContext(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Propagate copies the context's correlation id onto an outbound request.
func Propagate(ctx context.Context, req *http.Request) {
	if id := FromContext(ctx); id != "" {
		req.Header.Set(Header, id)
	}
}
