package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	locdomain "roloApp/internal/modules/locations/domain"
	"roloApp/internal/modules/posts/domain"
	rtusecase "roloApp/internal/modules/realtime/application/usecase"
	rtdomain "roloApp/internal/modules/realtime/domain"
	users "roloApp/internal/modules/users/domain"
	"roloApp/internal/platform/storage"
	"roloApp/internal/shared/apperrors"
)

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]domain.Post)}
}

func (r *fakePostRepo) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, apperrors.NotFoundf("post %s not found", id)
	}
	copied := post
	return &copied, nil
}

func (r *fakePostRepo) FindAll(_ context.Context) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.Post, 0, len(r.posts))
	for _, post := range r.posts {
		all = append(all, post)
	}
	return all, nil
}

func (r *fakePostRepo) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return apperrors.NotFoundf("post %s not found", post.ID)
	}
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return apperrors.NotFoundf("post %s not found", id)
	}
	delete(r.posts, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]users.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *users.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*users.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFoundf("user %s not found", id)
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, apperrors.NotFoundf("user %s not found", email)
}

func (r *fakeUserRepo) Update(_ context.Context, u *users.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]users.User, error) {
	all := make([]users.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	return all, nil
}

type fakeLocationRepo struct {
	locations map[string]locdomain.Location
}

func (r *fakeLocationRepo) Create(_ context.Context, l *locdomain.Location) error {
	r.locations[l.ID] = *l
	return nil
}

func (r *fakeLocationRepo) FindByID(_ context.Context, id string) (*locdomain.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}
	return &l, nil
}

func (r *fakeLocationRepo) FindAll(_ context.Context) ([]locdomain.Location, error) {
	all := make([]locdomain.Location, 0, len(r.locations))
	for _, l := range r.locations {
		all = append(all, l)
	}
	return all, nil
}

func (r *fakeLocationRepo) Update(_ context.Context, l *locdomain.Location) error {
	r.locations[l.ID] = *l
	return nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id string) error {
	delete(r.locations, id)
	return nil
}

type fakeUploader struct {
	mu         sync.Mutex
	uploads    []string
	destroyed  []string
	uploadErr  error
	destroyErr error
}

func (u *fakeUploader) Upload(_ context.Context, localPath, folder string) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	u.uploads = append(u.uploads, localPath)
	return &storage.UploadResult{
		URL:      "https://cdn.example/" + folder + "/" + localPath,
		PublicID: folder + "/" + localPath,
		Width:    800,
		Height:   600,
	}, nil
}

func (u *fakeUploader) Destroy(_ context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.destroyed = append(u.destroyed, publicID)
	return u.destroyErr
}

type captureBroadcaster struct {
	mu     sync.Mutex
	events []*rtdomain.Event
}

func (b *captureBroadcaster) Broadcast(_ context.Context, evt *rtdomain.Event) {
	b.mu.Lock()
	b.events = append(b.events, evt)
	b.mu.Unlock()
}

func (b *captureBroadcaster) all() []*rtdomain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*rtdomain.Event(nil), b.events...)
}

type postFixture struct {
	uc       *PostUseCase
	posts    *fakePostRepo
	users    *fakeUserRepo
	loc      *fakeLocationRepo
	uploader *fakeUploader
	events   *captureBroadcaster
	actor    *users.User
}

func newPostFixture() *postFixture {
	actor := &users.User{ID: "u1", Name: "Dana", Email: "dana@example.com", Role: users.RoleRegistered}
	userRepo := &fakeUserRepo{users: map[string]users.User{actor.ID: *actor}}
	locRepo := &fakeLocationRepo{locations: map[string]locdomain.Location{
		"l1": {ID: "l1", Name: "Harbor", CreatedBy: actor.ID},
	}}
	posts := newFakePostRepo()
	uploader := &fakeUploader{}
	events := &captureBroadcaster{}
	pipeline := rtusecase.NewPipeline(rtusecase.NewPublishUseCase(events), rtdomain.EntityPost)
	return &postFixture{
		uc:       NewPostUseCase(posts, userRepo, locRepo, uploader, pipeline),
		posts:    posts,
		users:    userRepo,
		loc:      locRepo,
		uploader: uploader,
		events:   events,
		actor:    actor,
	}
}

func TestCreatePost_ValidationFailureDoesNotBroadcast(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	_, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{Title: "  ", Content: "body"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if events := f.events.all(); len(events) != 0 {
		t.Fatalf("validation failure must not broadcast, got %d events", len(events))
	}
	if all, _ := f.posts.FindAll(context.Background()); len(all) != 0 {
		t.Fatal("validation failure must not persist")
	}
}

func TestCreatePost_BroadcastsEnrichedNewPost(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	post, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{
		Title:      "Sunset",
		Content:    "over the harbor",
		LocationID: "l1",
		ImagePath:  "sunset.jpg",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.AuthorName != "Dana" || post.LocationName != "Harbor" {
		t.Fatalf("denormalized fields not set: %+v", post)
	}

	events := f.events.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	evt := events[0]
	if evt.Event != "new_post" || evt.Room != rtdomain.RoomPosts || evt.ResourceID != post.ID {
		t.Fatalf("unexpected event: %+v", evt)
	}
	snapshot, ok := evt.Data.(*domain.Snapshot)
	if !ok {
		t.Fatalf("event data is %T, want *domain.Snapshot", evt.Data)
	}
	if snapshot.Author.Name != "Dana" {
		t.Errorf("author not resolved: %+v", snapshot.Author)
	}
	if snapshot.Location == nil || snapshot.Location.Name != "Harbor" {
		t.Errorf("location not resolved: %+v", snapshot.Location)
	}
}

func TestCreatePost_UnknownLocationRejected(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	_, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{
		Title:      "Sunset",
		Content:    "body",
		LocationID: "missing",
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreatePost_CommitFailureDestroysUpload(t *testing.T) {
	t.Parallel()
	f := newPostFixture()
	failing := &failingPostRepo{err: errors.New("write conflict")}
	pipeline := rtusecase.NewPipeline(rtusecase.NewPublishUseCase(f.events), rtdomain.EntityPost)
	uc := NewPostUseCase(failing, f.users, f.loc, f.uploader, pipeline)

	_, err := uc.Create(context.Background(), f.actor, CreatePostInput{
		Title:     "Sunset",
		Content:   "body",
		ImagePath: "sunset.jpg",
	})
	if err == nil {
		t.Fatal("expected commit failure")
	}
	if len(f.uploader.destroyed) != 1 {
		t.Fatalf("orphaned upload not destroyed: %v", f.uploader.destroyed)
	}
	if events := f.events.all(); len(events) != 0 {
		t.Fatal("failed commit must not broadcast")
	}
}

type failingPostRepo struct {
	fakePostRepo
	err error
}

func (r *failingPostRepo) Create(context.Context, *domain.Post) error { return r.err }

func TestToggleLike_RoundTripBroadcastsUpdates(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	post, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	liked, err := f.uc.ToggleLike(context.Background(), f.actor, post.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if liked.Likes != 1 {
		t.Fatalf("likes = %d, want 1", liked.Likes)
	}

	unliked, err := f.uc.ToggleLike(context.Background(), f.actor, post.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if unliked.Likes != 0 || len(unliked.LikedBy) != 0 {
		t.Fatalf("round trip did not restore state: %+v", unliked)
	}

	events := f.events.all()
	if len(events) != 3 {
		t.Fatalf("got %d events, want new_post + 2 updates", len(events))
	}
	for _, evt := range events[1:] {
		if evt.Event != "update_post" {
			t.Errorf("event = %q, want update_post", evt.Event)
		}
	}
}

func TestUpdatePost_NonOwnerForbidden(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	post, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := &users.User{ID: "u2", Name: "Lee"}
	if _, err := f.uc.Update(context.Background(), stranger, post.ID, UpdatePostInput{Title: "hijack"}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if err := f.uc.Delete(context.Background(), stranger, post.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestUpdatePost_ImageReplacementDestroysOld(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	post, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{Title: "t", Content: "c", ImagePath: "old.jpg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldImageID := post.ImageID

	updated, err := f.uc.Update(context.Background(), f.actor, post.ID, UpdatePostInput{ImagePath: "new.jpg"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ImageID == oldImageID {
		t.Fatal("image id not replaced")
	}
	if len(f.uploader.destroyed) != 1 || f.uploader.destroyed[0] != oldImageID {
		t.Fatalf("old image not destroyed: %v", f.uploader.destroyed)
	}
}

func TestDeletePost_DestroyFailureDoesNotBlockDelete(t *testing.T) {
	t.Parallel()
	f := newPostFixture()
	f.uploader.destroyErr = errors.New("cdn unavailable")

	post, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{Title: "t", Content: "c", ImagePath: "x.jpg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.uc.Delete(context.Background(), f.actor, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.posts.FindByID(context.Background(), post.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatal("post still present after delete")
	}

	events := f.events.all()
	last := events[len(events)-1]
	if last.Event != "delete_post" {
		t.Fatalf("last event = %q, want delete_post", last.Event)
	}
	data, ok := last.Data.(map[string]string)
	if !ok || data["id"] != post.ID {
		t.Fatalf("delete payload = %#v", last.Data)
	}
}

func TestAddComment_AppendsAndBroadcasts(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	post, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	commented, err := f.uc.AddComment(context.Background(), f.actor, post.ID, "lovely")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if commented.Comments != 1 || commented.CommentsList[0].AuthorName != "Dana" {
		t.Fatalf("comment not recorded: %+v", commented)
	}

	if _, err := f.uc.AddComment(context.Background(), f.actor, post.ID, "  "); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestGetPost_DegradesWhenAuthorMissing(t *testing.T) {
	t.Parallel()
	f := newPostFixture()

	post, err := f.uc.Create(context.Background(), f.actor, CreatePostInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	delete(f.users.users, f.actor.ID)

	snapshot, err := f.uc.Get(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snapshot.Author.ID != f.actor.ID || snapshot.Author.Name != "Dana" {
		t.Fatalf("denormalized author fallback missing: %+v", snapshot.Author)
	}
}
