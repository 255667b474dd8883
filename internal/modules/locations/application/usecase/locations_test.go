package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"roloApp/internal/modules/locations/domain"
	rtusecase "roloApp/internal/modules/realtime/application/usecase"
	rtdomain "roloApp/internal/modules/realtime/domain"
	users "roloApp/internal/modules/users/domain"
	"roloApp/internal/platform/storage"
	"roloApp/internal/shared/apperrors"
)

type memoryLocationRepo struct {
	mu        sync.Mutex
	locations map[string]domain.Location
}

func newMemoryLocationRepo() *memoryLocationRepo {
	return &memoryLocationRepo{locations: make(map[string]domain.Location)}
}

func (r *memoryLocationRepo) Create(_ context.Context, l *domain.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = *l
	return nil
}

func (r *memoryLocationRepo) FindByID(_ context.Context, id string) (*domain.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locations[id]
	if !ok {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}
	copied := l
	return &copied, nil
}

func (r *memoryLocationRepo) FindAll(_ context.Context) ([]domain.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.Location, 0, len(r.locations))
	for _, l := range r.locations {
		all = append(all, l)
	}
	return all, nil
}

func (r *memoryLocationRepo) Update(_ context.Context, l *domain.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[l.ID]; !ok {
		return apperrors.NotFoundf("location %s not found", l.ID)
	}
	r.locations[l.ID] = *l
	return nil
}

func (r *memoryLocationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[id]; !ok {
		return apperrors.NotFoundf("location %s not found", id)
	}
	delete(r.locations, id)
	return nil
}

type memoryUserRepo struct {
	users map[string]users.User
}

func (r *memoryUserRepo) Create(_ context.Context, u *users.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*users.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFoundf("user %s not found", id)
	}
	return &u, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, apperrors.NotFoundf("user %s not found", email)
}

func (r *memoryUserRepo) Update(_ context.Context, u *users.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *memoryUserRepo) List(_ context.Context) ([]users.User, error) {
	all := make([]users.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	return all, nil
}

type countingUploader struct {
	mu         sync.Mutex
	uploads    int
	destroyed  []string
	destroyErr map[string]error
}

func (u *countingUploader) Upload(_ context.Context, localPath, folder string) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads++
	return &storage.UploadResult{
		URL:      "https://cdn.example/" + folder + "/" + localPath,
		PublicID: folder + "/" + localPath,
		Width:    1024,
		Height:   768,
	}, nil
}

func (u *countingUploader) Destroy(_ context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.destroyed = append(u.destroyed, publicID)
	if err, ok := u.destroyErr[publicID]; ok {
		return err
	}
	return nil
}

type eventSink struct {
	mu     sync.Mutex
	events []*rtdomain.Event
}

func (s *eventSink) Broadcast(_ context.Context, evt *rtdomain.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *eventSink) all() []*rtdomain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*rtdomain.Event(nil), s.events...)
}

type locationFixture struct {
	uc       *LocationUseCase
	repo     *memoryLocationRepo
	uploader *countingUploader
	events   *eventSink
	actor    *users.User
}

func newLocationFixture() *locationFixture {
	actor := &users.User{ID: "u1", Name: "Dana", Email: "dana@example.com"}
	repo := newMemoryLocationRepo()
	userRepo := &memoryUserRepo{users: map[string]users.User{actor.ID: *actor}}
	uploader := &countingUploader{destroyErr: make(map[string]error)}
	events := &eventSink{}
	pipeline := rtusecase.NewPipeline(rtusecase.NewPublishUseCase(events), rtdomain.EntityLocation)
	return &locationFixture{
		uc:       NewLocationUseCase(repo, userRepo, uploader, pipeline),
		repo:     repo,
		uploader: uploader,
		events:   events,
		actor:    actor,
	}
}

func validInput() CreateLocationInput {
	return CreateLocationInput{
		Name:        "Harbor",
		Description: "salt air and gulls",
		Latitude:    43.37,
		Longitude:   -8.4,
		Sensations:  []string{"calm"},
		Smells:      []string{"salt"},
	}
}

func TestCreateLocation_Validation(t *testing.T) {
	t.Parallel()
	f := newLocationFixture()

	cases := []struct {
		name  string
		input CreateLocationInput
	}{
		{"missing name", CreateLocationInput{Description: "d"}},
		{"missing description", CreateLocationInput{Name: "n"}},
		{"latitude out of range", CreateLocationInput{Name: "n", Description: "d", Latitude: 91}},
		{"longitude out of range", CreateLocationInput{Name: "n", Description: "d", Longitude: -181}},
	}
	for _, tc := range cases {
		if _, err := f.uc.Create(context.Background(), f.actor, tc.input); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("%s: err = %v, want validation error", tc.name, err)
		}
	}
	if events := f.events.all(); len(events) != 0 {
		t.Fatalf("validation failures must not broadcast, got %d events", len(events))
	}
}

func TestCreateLocation_UploadsAllImagesAndBroadcasts(t *testing.T) {
	t.Parallel()
	f := newLocationFixture()

	input := validInput()
	input.ImagePaths = []string{"a.jpg", "b.jpg", "c.jpg"}

	location, err := f.uc.Create(context.Background(), f.actor, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(location.Images) != 3 {
		t.Fatalf("got %d images, want 3", len(location.Images))
	}
	if f.uploader.uploads != 3 {
		t.Fatalf("uploads = %d, want 3", f.uploader.uploads)
	}

	events := f.events.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Event != "new_location" || events[0].Room != rtdomain.RoomLocations {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	snapshot, ok := events[0].Data.(*domain.Snapshot)
	if !ok {
		t.Fatalf("event data is %T, want *domain.Snapshot", events[0].Data)
	}
	if snapshot.CreatedBy.Name != "Dana" {
		t.Errorf("creator not resolved: %+v", snapshot.CreatedBy)
	}
}

func TestDeleteLocation_DestroyFailuresDoNotBlock(t *testing.T) {
	t.Parallel()
	f := newLocationFixture()

	input := validInput()
	input.ImagePaths = []string{"a.jpg", "b.jpg", "c.jpg"}
	location, err := f.uc.Create(context.Background(), f.actor, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f.uploader.destroyErr[location.Images[0].PublicID] = errors.New("cdn unavailable")
	f.uploader.destroyErr[location.Images[1].PublicID] = errors.New("cdn unavailable")

	if err := f.uc.Delete(context.Background(), f.actor, location.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.uploader.destroyed) != 3 {
		t.Fatalf("destroy attempts = %d, want one per image", len(f.uploader.destroyed))
	}
	if _, err := f.repo.FindByID(context.Background(), location.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatal("location still present after delete")
	}

	events := f.events.all()
	last := events[len(events)-1]
	if last.Event != "delete_location" || last.ResourceID != location.ID {
		t.Fatalf("last event = %+v, want delete_location", last)
	}
}

func TestUpdateLocation_ReplaceImagesDestroysOldSet(t *testing.T) {
	t.Parallel()
	f := newLocationFixture()

	input := validInput()
	input.ImagePaths = []string{"old1.jpg", "old2.jpg"}
	location, err := f.uc.Create(context.Background(), f.actor, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.uc.Update(context.Background(), f.actor, location.ID, UpdateLocationInput{
		ImagePaths:    []string{"new.jpg"},
		ReplaceImages: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(updated.Images))
	}
	if len(f.uploader.destroyed) != 2 {
		t.Fatalf("destroyed = %v, want both old images", f.uploader.destroyed)
	}
}

func TestUpdateLocation_AppendsImagesByDefault(t *testing.T) {
	t.Parallel()
	f := newLocationFixture()

	input := validInput()
	input.ImagePaths = []string{"old.jpg"}
	location, err := f.uc.Create(context.Background(), f.actor, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.uc.Update(context.Background(), f.actor, location.ID, UpdateLocationInput{
		ImagePaths: []string{"extra.jpg"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(updated.Images))
	}
	if len(f.uploader.destroyed) != 0 {
		t.Fatalf("append must not destroy existing images: %v", f.uploader.destroyed)
	}
}

func TestLocation_NonOwnerForbidden(t *testing.T) {
	t.Parallel()
	f := newLocationFixture()

	location, err := f.uc.Create(context.Background(), f.actor, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := &users.User{ID: "u2", Name: "Lee"}
	if _, err := f.uc.Update(context.Background(), stranger, location.ID, UpdateLocationInput{Name: "hijack"}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("update err = %v, want forbidden", err)
	}
	if err := f.uc.Delete(context.Background(), stranger, location.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("delete err = %v, want forbidden", err)
	}
}

func TestLocation_AddComment(t *testing.T) {
	t.Parallel()
	f := newLocationFixture()

	location, err := f.uc.Create(context.Background(), f.actor, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	commented, err := f.uc.AddComment(context.Background(), f.actor, location.ID, "smells like the sea")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if commented.CommentsCount != 1 || commented.CommentsList[0].AuthorName != "Dana" {
		t.Fatalf("comment not recorded: %+v", commented)
	}

	if _, err := f.uc.AddComment(context.Background(), f.actor, location.ID, " "); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	events := f.events.all()
	last := events[len(events)-1]
	if last.Event != "update_location" {
		t.Fatalf("last event = %q, want update_location", last.Event)
	}
}
