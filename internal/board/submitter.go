package board

import (
	"context"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

//go:generate mockgen -source=submitter.go -destination=../mocks/board/mock_submitter.go -package=mock_board

// Submitter delivers a drawing to the relay
type Submitter interface {
	Submit(ctx context.Context, request drawing.Request) (drawing.Response, error)
}
