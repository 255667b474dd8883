package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"roloApp/internal/modules/locations/application/port"
	"roloApp/internal/modules/locations/domain"
	rtusecase "roloApp/internal/modules/realtime/application/usecase"
	userport "roloApp/internal/modules/users/application/port"
	users "roloApp/internal/modules/users/domain"
	"roloApp/internal/platform/storage"
	"roloApp/internal/shared/apperrors"
)

const imageFolder = "locations"

type CreateLocationInput struct {
	Name        string
	Description string
	Latitude    float64
	Longitude   float64
	Address     string
	Sensations  []string
	Smells      []string
	// ImagePaths are staged local files, already validated by the transport.
	ImagePaths []string
}

type UpdateLocationInput struct {
	Name        string
	Description string
	Address     string
	Sensations  []string
	Smells      []string
	ImagePaths  []string
	// ReplaceImages drops the existing attachments (destroyed best effort)
	// in favor of ImagePaths.
	ReplaceImages bool
}

// LocationUseCase implements the location mutations, mirroring the post
// pipeline: commit first, enrich, then best-effort broadcast.
type LocationUseCase struct {
	locations port.LocationRepository
	userrs    userport.UserRepository
	uploader  storage.Uploader
	pipeline  *rtusecase.Pipeline
	now       func() time.Time
}

func NewLocationUseCase(
	locations port.LocationRepository,
	userrs userport.UserRepository,
	uploader storage.Uploader,
	pipeline *rtusecase.Pipeline,
) *LocationUseCase {
	return &LocationUseCase{
		locations: locations,
		userrs:    userrs,
		uploader:  uploader,
		pipeline:  pipeline,
		now:       time.Now,
	}
}

func (uc *LocationUseCase) Create(ctx context.Context, actor *users.User, input CreateLocationInput) (*domain.Location, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if name == "" || description == "" {
		return nil, apperrors.Validationf("name and description are required")
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return nil, apperrors.Validationf("coordinates out of range")
	}

	images, err := uc.uploadImages(ctx, input.ImagePaths)
	if err != nil {
		return nil, err
	}

	location := &domain.Location{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     strings.TrimSpace(input.Address),
		Sensations:  input.Sensations,
		Smells:      input.Smells,
		Images:      images,
		CreatedBy:   actor.ID,
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.locations.Create(ctx, location); err != nil {
		uc.destroyImages(ctx, images)
		return nil, fmt.Errorf("create location: %w", err)
	}

	uc.pipeline.Created(ctx, location.ID, uc.enricher(location.ID))
	return location, nil
}

func (uc *LocationUseCase) List(ctx context.Context) ([]domain.Snapshot, error) {
	locations, err := uc.locations.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	snapshots := make([]domain.Snapshot, 0, len(locations))
	for i := range locations {
		snapshots = append(snapshots, uc.lenientSnapshot(ctx, &locations[i]))
	}
	return snapshots, nil
}

func (uc *LocationUseCase) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	location, err := uc.locations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	snapshot := uc.lenientSnapshot(ctx, location)
	return &snapshot, nil
}

func (uc *LocationUseCase) Update(ctx context.Context, actor *users.User, id string, input UpdateLocationInput) (*domain.Location, error) {
	location, err := uc.ownedLocation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		location.Name = name
	}
	if description := strings.TrimSpace(input.Description); description != "" {
		location.Description = description
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		location.Address = address
	}
	if input.Sensations != nil {
		location.Sensations = input.Sensations
	}
	if input.Smells != nil {
		location.Smells = input.Smells
	}

	if len(input.ImagePaths) > 0 {
		uploaded, err := uc.uploadImages(ctx, input.ImagePaths)
		if err != nil {
			return nil, err
		}
		if input.ReplaceImages {
			uc.destroyImages(ctx, location.Images)
			location.Images = uploaded
		} else {
			location.Images = append(location.Images, uploaded...)
		}
	}

	if err := uc.locations.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	uc.pipeline.Updated(ctx, location.ID, uc.enricher(location.ID))
	return location, nil
}

// Delete removes the location after issuing one best-effort destroy per
// attached image. Destroy failures are logged and never block the store
// delete or the broadcast.
func (uc *LocationUseCase) Delete(ctx context.Context, actor *users.User, id string) error {
	location, err := uc.ownedLocation(ctx, actor, id)
	if err != nil {
		return err
	}
	uc.destroyImages(ctx, location.Images)
	if err := uc.locations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	uc.pipeline.Deleted(ctx, id)
	return nil
}

func (uc *LocationUseCase) AddComment(ctx context.Context, actor *users.User, id, content string) (*domain.Location, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("comment content is required")
	}
	location, err := uc.locations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	location.AddComment(actor.ID, actor.Name, content, uc.now())
	if err := uc.locations.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	uc.pipeline.Updated(ctx, location.ID, uc.enricher(location.ID))
	return location, nil
}

func (uc *LocationUseCase) ownedLocation(ctx context.Context, actor *users.User, id string) (*domain.Location, error) {
	location, err := uc.locations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	if location.CreatedBy != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	return location, nil
}

func (uc *LocationUseCase) uploadImages(ctx context.Context, paths []string) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(paths))
	for _, path := range paths {
		result, err := uc.uploader.Upload(ctx, path, imageFolder)
		if err != nil {
			// Partial uploads are cleaned up before surfacing the failure.
			uc.destroyImages(ctx, images)
			return nil, fmt.Errorf("upload location image: %w", err)
		}
		images = append(images, domain.Image{
			Src:      result.URL,
			PublicID: result.PublicID,
			Width:    result.Width,
			Height:   result.Height,
		})
	}
	return images, nil
}

func (uc *LocationUseCase) destroyImages(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := uc.uploader.Destroy(ctx, img.PublicID); err != nil {
			slog.Warn("location image destroy failed", slog.String("publicId", img.PublicID), slog.Any("error", err))
		}
	}
}

func (uc *LocationUseCase) enricher(id string) rtusecase.EnrichFunc {
	return func(ctx context.Context) (any, error) {
		fresh, err := uc.locations.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reload location %s: %w", id, err)
		}
		creator, err := uc.userrs.FindByID(ctx, fresh.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("resolve creator %s: %w", fresh.CreatedBy, err)
		}
		return &domain.Snapshot{Location: *fresh, CreatedBy: creator.Public()}, nil
	}
}

func (uc *LocationUseCase) lenientSnapshot(ctx context.Context, location *domain.Location) domain.Snapshot {
	if creator, err := uc.userrs.FindByID(ctx, location.CreatedBy); err == nil {
		return domain.Snapshot{Location: *location, CreatedBy: creator.Public()}
	} else {
		slog.Debug("location enrichment degraded", slog.String("locationId", location.ID), slog.Any("error", err))
	}
	return domain.Snapshot{Location: *location, CreatedBy: users.PublicProfile{ID: location.CreatedBy}}
}
