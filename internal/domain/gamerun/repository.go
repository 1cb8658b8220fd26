package gamerun

import "context"

type Repository interface {
	Upsert(ctx context.Context, run Run) error
	FindByGameID(ctx context.Context, gameID int64) (*Run, error)
}
