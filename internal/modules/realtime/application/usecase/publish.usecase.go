package usecase

import (
	"context"
	"log/slog"
	"time"

	"roloApp/internal/modules/realtime/application/port"
	"roloApp/internal/modules/realtime/domain"
)

// PublishUseCase hands committed mutation events to the broadcaster. It is the
// only path from the mutation side into the realtime core.
type PublishUseCase struct {
	broadcaster port.Broadcaster
}

func NewPublishUseCase(b port.Broadcaster) *PublishUseCase {
	return &PublishUseCase{broadcaster: b}
}

func (uc *PublishUseCase) Execute(ctx context.Context, evt *domain.Event) {
	if evt == nil || evt.Room == "" {
		return
	}
	uc.broadcaster.Broadcast(ctx, evt)
}

// EnrichFunc resolves referenced entity ids into the display-form snapshot
// broadcast to subscribers. It runs after the mutation committed; a failure
// skips the event without touching the caller's response.
type EnrichFunc func(ctx context.Context) (any, error)

// Pipeline is the per-entity mutation-to-event bridge. Posts and locations
// share the exact same fan-out logic, parameterized by entity kind.
type Pipeline struct {
	publisher *PublishUseCase
	entity    string
	now       func() time.Time
}

func NewPipeline(publisher *PublishUseCase, entity string) *Pipeline {
	return &Pipeline{publisher: publisher, entity: entity, now: time.Now}
}

// Created broadcasts a new_<entity> event carrying the enriched snapshot.
func (p *Pipeline) Created(ctx context.Context, resourceID string, enrich EnrichFunc) {
	p.emit(ctx, domain.ActionNew, resourceID, enrich)
}

// Updated broadcasts an update_<entity> event carrying the enriched snapshot.
func (p *Pipeline) Updated(ctx context.Context, resourceID string, enrich EnrichFunc) {
	p.emit(ctx, domain.ActionUpdate, resourceID, enrich)
}

// Deleted broadcasts a delete_<entity> event carrying only the entity id.
func (p *Pipeline) Deleted(ctx context.Context, resourceID string) {
	evt := domain.NewEntityEvent(domain.ActionDelete, p.entity, resourceID, map[string]string{"id": resourceID}, p.now())
	p.publisher.Execute(ctx, evt)
}

func (p *Pipeline) emit(ctx context.Context, action, resourceID string, enrich EnrichFunc) {
	var data any
	if enrich != nil {
		snapshot, err := enrich(ctx)
		if err != nil {
			slog.Warn("broadcast enrichment failed, event skipped",
				slog.String("entity", p.entity),
				slog.String("action", action),
				slog.String("resourceId", resourceID),
				slog.Any("error", err))
			return
		}
		data = snapshot
	}
	evt := domain.NewEntityEvent(action, p.entity, resourceID, data, p.now())
	p.publisher.Execute(ctx, evt)
}
