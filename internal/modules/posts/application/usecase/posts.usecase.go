package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	locport "roloApp/internal/modules/locations/application/port"
	"roloApp/internal/modules/posts/application/port"
	"roloApp/internal/modules/posts/domain"
	rtusecase "roloApp/internal/modules/realtime/application/usecase"
	userport "roloApp/internal/modules/users/application/port"
	users "roloApp/internal/modules/users/domain"
	"roloApp/internal/platform/storage"
	"roloApp/internal/shared/apperrors"
)

const imageFolder = "posts"

type CreatePostInput struct {
	Title      string
	Content    string
	LocationID string
	// ImagePath is a staged local file, already validated by the transport.
	ImagePath string
}

type UpdatePostInput struct {
	Title     string
	Content   string
	ImagePath string
}

// PostUseCase implements the post mutations. Every committed mutation flows
// through the realtime pipeline after enrichment; the HTTP response never
// waits on or fails with the broadcast.
type PostUseCase struct {
	posts     port.PostRepository
	userrs    userport.UserRepository
	locations locport.LocationRepository
	uploader  storage.Uploader
	pipeline  *rtusecase.Pipeline
	now       func() time.Time
}

func NewPostUseCase(
	posts port.PostRepository,
	userrs userport.UserRepository,
	locations locport.LocationRepository,
	uploader storage.Uploader,
	pipeline *rtusecase.Pipeline,
) *PostUseCase {
	return &PostUseCase{
		posts:     posts,
		userrs:    userrs,
		locations: locations,
		uploader:  uploader,
		pipeline:  pipeline,
		now:       time.Now,
	}
}

func (uc *PostUseCase) Create(ctx context.Context, actor *users.User, input CreatePostInput) (*domain.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.Validationf("title and content are required")
	}

	locationName := ""
	locationID := strings.TrimSpace(input.LocationID)
	if locationID != "" {
		loc, err := uc.locations.FindByID(ctx, locationID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.Validationf("invalid location id")
			}
			return nil, fmt.Errorf("resolve location: %w", err)
		}
		locationName = loc.Name
	}

	imageURL, imageID := "", ""
	if input.ImagePath != "" {
		result, err := uc.uploader.Upload(ctx, input.ImagePath, imageFolder)
		if err != nil {
			return nil, fmt.Errorf("upload post image: %w", err)
		}
		imageURL, imageID = result.URL, result.PublicID
	}

	now := uc.now().UTC()
	post := &domain.Post{
		ID:           uuid.NewString(),
		Title:        title,
		Content:      content,
		Image:        imageURL,
		ImageID:      imageID,
		Author:       actor.ID,
		AuthorName:   actor.Name,
		Location:     locationID,
		LocationName: locationName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.posts.Create(ctx, post); err != nil {
		// The commit failed, so the upload is orphaned. Clean it up best effort.
		uc.destroyImage(ctx, imageID)
		return nil, fmt.Errorf("create post: %w", err)
	}

	uc.pipeline.Created(ctx, post.ID, uc.enricher(post))
	return post, nil
}

func (uc *PostUseCase) List(ctx context.Context) ([]domain.Snapshot, error) {
	posts, err := uc.posts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	snapshots := make([]domain.Snapshot, 0, len(posts))
	for i := range posts {
		snapshots = append(snapshots, uc.lenientSnapshot(ctx, &posts[i]))
	}
	return snapshots, nil
}

func (uc *PostUseCase) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	post, err := uc.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	snapshot := uc.lenientSnapshot(ctx, post)
	return &snapshot, nil
}

func (uc *PostUseCase) Update(ctx context.Context, actor *users.User, id string, input UpdatePostInput) (*domain.Post, error) {
	post, err := uc.ownedPost(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		post.Title = title
	}
	if content := strings.TrimSpace(input.Content); content != "" {
		post.Content = content
	}
	if input.ImagePath != "" {
		result, err := uc.uploader.Upload(ctx, input.ImagePath, imageFolder)
		if err != nil {
			return nil, fmt.Errorf("upload replacement image: %w", err)
		}
		uc.destroyImage(ctx, post.ImageID)
		post.Image, post.ImageID = result.URL, result.PublicID
	}
	post.UpdatedAt = uc.now().UTC()

	if err := uc.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	uc.pipeline.Updated(ctx, post.ID, uc.enricher(post))
	return post, nil
}

func (uc *PostUseCase) Delete(ctx context.Context, actor *users.User, id string) error {
	post, err := uc.ownedPost(ctx, actor, id)
	if err != nil {
		return err
	}
	// Attachment cleanup is best effort and never blocks the delete.
	uc.destroyImage(ctx, post.ImageID)
	if err := uc.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	uc.pipeline.Deleted(ctx, id)
	return nil
}

func (uc *PostUseCase) ToggleLike(ctx context.Context, actor *users.User, id string) (*domain.Post, error) {
	post, err := uc.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	liked := post.ToggleLike(actor.ID)
	post.UpdatedAt = uc.now().UTC()
	if err := uc.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("save like toggle: %w", err)
	}
	slog.Debug("post like toggled", slog.String("postId", id), slog.String("userId", actor.ID), slog.Bool("liked", liked))
	uc.pipeline.Updated(ctx, post.ID, uc.enricher(post))
	return post, nil
}

func (uc *PostUseCase) AddComment(ctx context.Context, actor *users.User, id, content string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("comment content is required")
	}
	post, err := uc.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	post.AddComment(actor.ID, actor.Name, content, uc.now())
	post.UpdatedAt = uc.now().UTC()
	if err := uc.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	uc.pipeline.Updated(ctx, post.ID, uc.enricher(post))
	return post, nil
}

func (uc *PostUseCase) ownedPost(ctx context.Context, actor *users.User, id string) (*domain.Post, error) {
	post, err := uc.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post.Author != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	return post, nil
}

// enricher captures the post id so enrichment reads the committed state at
// broadcast time, not the in-memory copy.
func (uc *PostUseCase) enricher(post *domain.Post) rtusecase.EnrichFunc {
	id := post.ID
	return func(ctx context.Context) (any, error) {
		fresh, err := uc.posts.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reload post %s: %w", id, err)
		}
		snapshot, err := uc.snapshot(ctx, fresh)
		if err != nil {
			return nil, err
		}
		return snapshot, nil
	}
}

func (uc *PostUseCase) snapshot(ctx context.Context, post *domain.Post) (*domain.Snapshot, error) {
	author, err := uc.userrs.FindByID(ctx, post.Author)
	if err != nil {
		return nil, fmt.Errorf("resolve author %s: %w", post.Author, err)
	}
	snapshot := &domain.Snapshot{Post: *post, Author: author.Public()}
	if post.Location != "" {
		loc, err := uc.locations.FindByID(ctx, post.Location)
		if err != nil {
			return nil, fmt.Errorf("resolve location %s: %w", post.Location, err)
		}
		snapshot.Location = &domain.LocationSummary{ID: loc.ID, Name: loc.Name}
	}
	return snapshot, nil
}

// lenientSnapshot degrades to the denormalized fields when a referenced
// entity cannot be resolved, so reads keep working after an author or
// location disappears.
func (uc *PostUseCase) lenientSnapshot(ctx context.Context, post *domain.Post) domain.Snapshot {
	if snapshot, err := uc.snapshot(ctx, post); err == nil {
		return *snapshot
	} else {
		slog.Debug("post enrichment degraded", slog.String("postId", post.ID), slog.Any("error", err))
	}
	snapshot := domain.Snapshot{Post: *post, Author: users.PublicProfile{ID: post.Author, Name: post.AuthorName}}
	if post.Location != "" {
		snapshot.Location = &domain.LocationSummary{ID: post.Location, Name: post.LocationName}
	}
	return snapshot
}

func (uc *PostUseCase) destroyImage(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := uc.uploader.Destroy(ctx, publicID); err != nil {
		slog.Warn("post image destroy failed", slog.String("publicId", publicID), slog.Any("error", err))
	}
}
