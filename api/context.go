package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/session"
)

type keyType string

const sessionKey keyType = "session"

// SessionHeader carries the session ID in both directions.
const SessionHeader = "X-Session-ID"

func ctxWithSession(ctx context.Context, state *session.State) context.Context {
	return context.WithValue(ctx, sessionKey, state)
}

func ctxGetSession(ctx context.Context) (*session.State, error) {
	state, ok := ctx.Value(sessionKey).(*session.State)
	if !ok || state == nil {
		return nil, errors.New("session not found in context")
	}
	return state, nil
}

// withSession runs fn on the request's session while holding its lock.
func withSession(r *http.Request, fn func(*session.State) error) error {
	state, err := ctxGetSession(r.Context())
	if err != nil {
		return errs.NewInternalErrorWithCause("session unavailable", err)
	}
	return state.Do(fn)
}
