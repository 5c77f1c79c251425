package client

import "context"

type Repository interface {
	List(ctx context.Context) ([]ClientSummary, error)
	GetByID(ctx context.Context, id int) (*ClientWithSubscription, error)
}
