package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/ports"
)

type stubApplicationRepo struct {
	mu     sync.Mutex
	apps   map[string]*domain.ArtistApplication
	nextID int
}

func newStubApplicationRepo() *stubApplicationRepo {
	return &stubApplicationRepo{apps: make(map[string]*domain.ArtistApplication)}
}

func cloneApp(a *domain.ArtistApplication) *domain.ArtistApplication {
	clone := *a
	return &clone
}

func (r *stubApplicationRepo) Create(_ context.Context, app *domain.ArtistApplication) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("app-%d", r.nextID)
	stored := cloneApp(app)
	stored.ID = id
	r.apps[id] = stored
	return id, nil
}

func (r *stubApplicationRepo) FindByID(_ context.Context, id string) (*domain.ArtistApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	return cloneApp(a), nil
}

func (r *stubApplicationRepo) FindActiveByUser(_ context.Context, userID string) (*domain.ArtistApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.UserID == userID && (a.Status == domain.ApplicationPending || a.Status == domain.ApplicationApproved) {
			return cloneApp(a), nil
		}
	}
	return nil, domain.ErrApplicationNotFound
}

func (r *stubApplicationRepo) ListByUser(_ context.Context, userID string) ([]*domain.ArtistApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.ArtistApplication{}
	for _, a := range r.apps {
		if a.UserID == userID {
			out = append(out, cloneApp(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubApplicationRepo) ListWithEmail(_ context.Context) ([]*domain.ArtistApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.ArtistApplication{}
	for _, a := range r.apps {
		out = append(out, cloneApp(a))
	}
	return out, nil
}

func (r *stubApplicationRepo) UpdateStatus(_ context.Context, id string, status domain.ApplicationStatus, reviewerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	if a.Status != domain.ApplicationPending {
		return domain.ErrApplicationNotPending
	}
	a.Status = status
	a.ReviewedBy = reviewerID
	a.UpdatedAt = at
	return nil
}

func (r *stubApplicationRepo) CountByStatus(_ context.Context, status domain.ApplicationStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.apps {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

type stubArtistRepo struct {
	mu      sync.Mutex
	artists []*domain.Artist
	err     error
}

func (r *stubArtistRepo) Create(_ context.Context, a *domain.Artist) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	clone := *a
	clone.ID = fmt.Sprintf("artist-%d", len(r.artists)+1)
	r.artists = append(r.artists, &clone)
	return clone.ID, nil
}

func (r *stubArtistRepo) FindByUser(_ context.Context, userID string) (*domain.Artist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.artists {
		if a.UserID == userID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

type stubLocker struct {
	held     map[string]string
	err      error
	released []string
	seq      int
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]string)}
}

func (l *stubLocker) Acquire(_ context.Context, id string) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[id]; ok {
		return "", false, nil
	}
	l.seq++
	token := fmt.Sprintf("token-%d", l.seq)
	l.held[id] = token
	return token, true, nil
}

func (l *stubLocker) Release(_ context.Context, id, token string) error {
	if l.held[id] == token {
		delete(l.held, id)
	}
	l.released = append(l.released, id)
	return nil
}

type applicationFixture struct {
	svc     *ApplicationService
	apps    *stubApplicationRepo
	artists *stubArtistRepo
	users   *stubAuthRepo
	locker  *stubLocker
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		apps:    newStubApplicationRepo(),
		artists: &stubArtistRepo{},
		users:   newStubAuthRepo(),
		locker:  newStubLocker(),
	}
	f.svc = NewApplicationService(f.apps, f.artists, f.users, f.locker, zerolog.Nop())
	return f
}

func (f *applicationFixture) addUser(t *testing.T, email string, role domain.Role) domain.Principal {
	t.Helper()
	u, err := f.users.Create(context.Background(), &domain.User{Email: email, Role: role})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return domain.Principal{SubjectID: u.ID, Role: role}
}

var sampleInput = ports.SubmitApplicationInput{
	StageName:      " DJ Nova ",
	Genre:          "Electronic, House",
	Bio:            "Deep house DJ.",
	PortfolioLinks: "https://soundcloud.com/djnova\nhttps://instagram.com/djnova_official\n",
}

func TestApplicationService_Submit(t *testing.T) {
	f := newApplicationFixture()
	user := f.addUser(t, "user1@mail.com", domain.RoleUser)

	id, err := f.svc.Submit(context.Background(), user, sampleInput)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	app, _ := f.apps.FindByID(context.Background(), id)
	if app.StageName != "DJ Nova" || app.Status != domain.ApplicationPending || app.UserID != user.SubjectID {
		t.Fatalf("unexpected application: %+v", app)
	}
	if len(app.Genres) != 2 || app.Genres[1] != "House" {
		t.Fatalf("unexpected genres: %v", app.Genres)
	}
	if len(app.PortfolioLinks) != 2 {
		t.Fatalf("unexpected links: %v", app.PortfolioLinks)
	}
}

func TestApplicationService_Submit_Duplicate(t *testing.T) {
	f := newApplicationFixture()
	user := f.addUser(t, "user1@mail.com", domain.RoleUser)

	if _, err := f.svc.Submit(context.Background(), user, sampleInput); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), user, sampleInput); err != domain.ErrApplicationExists {
		t.Fatalf("expected ErrApplicationExists, got %v", err)
	}
}

func TestApplicationService_Submit_AfterRejection(t *testing.T) {
	f := newApplicationFixture()
	admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)
	user := f.addUser(t, "user1@mail.com", domain.RoleUser)
	ctx := context.Background()

	id, _ := f.svc.Submit(ctx, user, sampleInput)
	if err := f.svc.Reject(ctx, admin, id); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.svc.Submit(ctx, user, sampleInput); err != nil {
		t.Fatalf("resubmit after rejection should succeed: %v", err)
	}

	mine, err := f.svc.ListMine(ctx, user)
	if err != nil || len(mine) != 2 {
		t.Fatalf("expected 2 applications, got %d (%v)", len(mine), err)
	}
}

func TestApplicationService_Approve(t *testing.T) {
	f := newApplicationFixture()
	admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)
	user := f.addUser(t, "user1@mail.com", domain.RoleUser)
	ctx := context.Background()

	id, _ := f.svc.Submit(ctx, user, sampleInput)
	if err := f.svc.Approve(ctx, admin, id); err != nil {
		t.Fatalf("approve: %v", err)
	}

	app, _ := f.apps.FindByID(ctx, id)
	if app.Status != domain.ApplicationApproved || app.ReviewedBy != admin.SubjectID {
		t.Fatalf("unexpected application after approve: %+v", app)
	}

	u, _ := f.users.FindByID(ctx, user.SubjectID)
	if u.Role != domain.RoleArtist {
		t.Fatalf("expected applicant promoted to artist, got %s", u.Role)
	}

	artist, err := f.svc.ArtistProfile(ctx, domain.Principal{SubjectID: user.SubjectID, Role: domain.RoleArtist})
	if err != nil || artist.StageName != "DJ Nova" {
		t.Fatalf("expected artist record, got %+v %v", artist, err)
	}

	if len(f.locker.held) != 0 || len(f.locker.released) != 1 {
		t.Fatalf("lock not released: %+v", f.locker)
	}
}

func TestApplicationService_Approve_PartialFailureIsFlagged(t *testing.T) {
	cases := []struct {
		name    string
		breakIt func(f *applicationFixture, userID string)
		step    string
	}{
		{"role update fails", func(f *applicationFixture, userID string) {
			f.users.mu.Lock()
			delete(f.users.users, userID)
			f.users.mu.Unlock()
		}, "promote applicant"},
		{"artist create fails", func(f *applicationFixture, _ string) {
			f.artists.err = errors.New("mongo down")
		}, "create artist"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newApplicationFixture()
			var logs bytes.Buffer
			f.svc = NewApplicationService(f.apps, f.artists, f.users, f.locker, zerolog.New(&logs))
			admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)
			user := f.addUser(t, "user1@mail.com", domain.RoleUser)
			ctx := context.Background()

			id, _ := f.svc.Submit(ctx, user, sampleInput)
			tc.breakIt(f, user.SubjectID)

			err := f.svc.Approve(ctx, admin, id)
			if err == nil || !strings.HasPrefix(err.Error(), tc.step) {
				t.Fatalf("expected %q error, got %v", tc.step, err)
			}

			out := logs.String()
			for _, want := range []string{`"level":"error"`, `"application_id":"` + id + `"`, `"user_id":"` + user.SubjectID + `"`, `"manual_repair":true`} {
				if !strings.Contains(out, want) {
					t.Fatalf("log missing %s: %s", want, out)
				}
			}
			if len(f.locker.held) != 0 {
				t.Fatalf("lock not released after failure: %+v", f.locker)
			}
		})
	}
}

func TestApplicationService_Review_NotPending(t *testing.T) {
	f := newApplicationFixture()
	admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)
	user := f.addUser(t, "user1@mail.com", domain.RoleUser)
	ctx := context.Background()

	id, _ := f.svc.Submit(ctx, user, sampleInput)
	_ = f.svc.Reject(ctx, admin, id)

	if err := f.svc.Approve(ctx, admin, id); err != domain.ErrApplicationNotPending {
		t.Fatalf("expected ErrApplicationNotPending, got %v", err)
	}
	if len(f.artists.artists) != 0 {
		t.Fatalf("rejected application must not create an artist")
	}
}

func TestApplicationService_Review_NotFound(t *testing.T) {
	f := newApplicationFixture()
	admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)

	if err := f.svc.Approve(context.Background(), admin, "missing"); err != domain.ErrApplicationNotFound {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestApplicationService_Review_LockHeld(t *testing.T) {
	f := newApplicationFixture()
	admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)
	user := f.addUser(t, "user1@mail.com", domain.RoleUser)
	ctx := context.Background()

	id, _ := f.svc.Submit(ctx, user, sampleInput)
	f.locker.held[id] = "other-reviewer"

	if err := f.svc.Approve(ctx, admin, id); err != domain.ErrReviewInProgress {
		t.Fatalf("expected ErrReviewInProgress, got %v", err)
	}
}

func TestApplicationService_Review_LockError(t *testing.T) {
	f := newApplicationFixture()
	admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)
	f.locker.err = errors.New("redis down")

	err := f.svc.Approve(context.Background(), admin, "app-1")
	if err == nil || errors.Is(err, domain.ErrReviewInProgress) {
		t.Fatalf("expected wrapped lock error, got %v", err)
	}
}

func TestApplicationService_Stats(t *testing.T) {
	f := newApplicationFixture()
	admin := f.addUser(t, "admin@eventco.com", domain.RoleAdmin)
	u1 := f.addUser(t, "user1@mail.com", domain.RoleUser)
	u2 := f.addUser(t, "user2@mail.com", domain.RoleUser)
	u3 := f.addUser(t, "user3@mail.com", domain.RoleUser)
	ctx := context.Background()

	a1, _ := f.svc.Submit(ctx, u1, sampleInput)
	a2, _ := f.svc.Submit(ctx, u2, sampleInput)
	_, _ = f.svc.Submit(ctx, u3, sampleInput)
	_ = f.svc.Approve(ctx, admin, a1)
	_ = f.svc.Reject(ctx, admin, a2)

	stats, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := domain.ApplicationStats{
		TotalUsers:           4,
		TotalArtists:         1,
		PendingApplications:  1,
		ApprovedApplications: 1,
		RejectedApplications: 1,
	}
	if *stats != want {
		t.Fatalf("got %+v, want %+v", *stats, want)
	}
}
