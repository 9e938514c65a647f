package publisher

import (
	"context"
	"errors"

	"github.com/radieske/coinflip-platform/pkg/contracts/events"
)

// Publisher entrega eventos de partida para sistemas externos
type Publisher interface {
	Publish(ctx context.Context, e events.MatchEvent) error
}

// Fanout publica em todos os sinks e junta os erros; um sink com falha não bloqueia os outros
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e events.MatchEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
