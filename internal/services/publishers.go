package services

import (
	"context"

	"smartair-backend/internal/models"
)

// Publishers fans one event out to several publishers in order.
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, event models.ReservationEvent) {
	for _, pub := range p {
		if pub != nil {
			pub.Publish(ctx, event)
		}
	}
}
