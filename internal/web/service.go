package web

import (
	"context"
	"net/url"

	"ownidp/internal/decision"
)

//go:generate mockgen -source=service.go -destination=mocks/web-mocks.go -package=mocks DecisionService

// DecisionService is the decision engine as the HTTP layer sees it.
type DecisionService interface {
	Begin(ctx context.Context, query url.Values, loggedIn bool) (decision.Outcome, error)
	Resolve(ctx context.Context, query url.Values, choice decision.Choice) (decision.Outcome, error)
	Preview(ctx context.Context, query url.Values) (decision.Preview, error)
}
