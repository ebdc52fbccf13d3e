package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/model"
	"github.com/ObservantAbc123/OpenFarm3-D/internal/repository"
)

// memStore is an in-memory stand-in for the user, email, thread and job
// repositories.
type memStore struct {
	users     map[int]model.User
	addresses map[string]int // lowercased address -> user id
	threads   map[int]model.Thread
	jobs      map[int]model.Job

	nextUserID   int
	nextThreadID int

	addressErr      error
	userRaceOnce    bool
	threadRaceOnce  bool
	threadCreateErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[int]model.User{},
		addresses:    map[string]int{},
		threads:      map[int]model.Thread{},
		jobs:         map[int]model.Job{},
		nextUserID:   1,
		nextThreadID: 1,
	}
}

func (s *memStore) FindByAddress(ctx context.Context, address string) ([]model.EmailAddress, error) {
	if s.addressErr != nil {
		return nil, s.addressErr
	}
	id, ok := s.addresses[strings.ToLower(address)]
	if !ok {
		return []model.EmailAddress{}, nil
	}
	return []model.EmailAddress{{UserID: id, Address: address, IsPrimary: true}}, nil
}

func (s *memStore) CreateWithEmail(ctx context.Context, u *model.User, address string) error {
	if s.userRaceOnce {
		s.userRaceOnce = false
		s.insertUser("Racer", address)
		return fmt.Errorf("insert email: %w", repository.ErrDuplicate)
	}
	u.ID = s.insertUser(u.DisplayName, address)
	return nil
}

func (s *memStore) insertUser(name, address string) int {
	id := s.nextUserID
	s.nextUserID++
	s.users[id] = model.User{ID: id, DisplayName: name}
	s.addresses[strings.ToLower(address)] = id
	return id
}

func (s *memStore) FindByID(ctx context.Context, id int) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

func (s *memStore) FindActive(ctx context.Context, userID int, jobID *int) (*model.Thread, error) {
	for _, t := range s.threads {
		if t.UserID == userID && t.Status == model.ThreadActive && jobEqual(t.JobID, jobID) {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(ctx context.Context, t *model.Thread) error {
	if s.threadCreateErr != nil {
		return s.threadCreateErr
	}
	if s.threadRaceOnce {
		s.threadRaceOnce = false
		s.insertThread(t.UserID, t.JobID)
		return fmt.Errorf("insert thread: %w", repository.ErrDuplicate)
	}
	t.ID = s.insertThread(t.UserID, t.JobID)
	return nil
}

func (s *memStore) insertThread(userID int, jobID *int) int {
	id := s.nextThreadID
	s.nextThreadID++
	s.threads[id] = model.Thread{ID: id, UserID: userID, JobID: jobID, Status: model.ThreadActive}
	return id
}

func (s *memStore) FindByID_Job(ctx context.Context, id int) (*model.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

// jobStoreAdapter exposes the job lookup under the interface name.
type jobStoreAdapter struct{ s *memStore }

func (a jobStoreAdapter) FindByID(ctx context.Context, id int) (*model.Job, error) {
	return a.s.FindByID_Job(ctx, id)
}

func jobEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func newTestResolver(s *memStore) *Resolver {
	return NewResolver(s, s, s, jobStoreAdapter{s}, zap.NewNop())
}

func intp(v int) *int { return &v }

func TestResolver_FirstContactCreatesUserAndThread(t *testing.T) {
	store := newMemStore()
	r := newTestResolver(store)

	outcome, th, err := r.Resolve(context.Background(), "anna@example.com", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("Expected OutcomeCreated, got %v", outcome)
	}
	if th == nil || th.JobID != nil {
		t.Fatalf("Expected general thread, got %+v", th)
	}

	u, ok := store.users[th.UserID]
	if !ok {
		t.Fatalf("No user created for thread %+v", th)
	}
	if u.DisplayName != "Anna" {
		t.Errorf("Expected display name Anna, got %q", u.DisplayName)
	}
}

func TestResolver_SecondMessageReusesThread(t *testing.T) {
	store := newMemStore()
	r := newTestResolver(store)
	ctx := context.Background()

	_, first, err := r.Resolve(ctx, "bob@example.com", nil)
	if err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}

	outcome, second, err := r.Resolve(ctx, "bob@example.com", nil)
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}
	if outcome != OutcomeExisting {
		t.Errorf("Expected OutcomeExisting, got %v", outcome)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same thread %d, got %d", first.ID, second.ID)
	}
	if len(store.threads) != 1 {
		t.Errorf("Expected 1 thread, got %d", len(store.threads))
	}
	if len(store.users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(store.users))
	}
}

func TestResolver_CaseInsensitiveAddressMatch(t *testing.T) {
	store := newMemStore()
	r := newTestResolver(store)
	ctx := context.Background()

	_, first, _ := r.Resolve(ctx, "carol@example.com", nil)
	_, second, err := r.Resolve(ctx, "Carol@Example.COM", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same thread for case variants, got %d and %d", first.ID, second.ID)
	}
}

func TestResolver_JobReferenceLinksThread(t *testing.T) {
	store := newMemStore()
	userID := store.insertUser("Dora", "dora@example.com")
	store.jobs[10] = model.Job{ID: 10, UserID: userID, Status: "accepted"}
	r := newTestResolver(store)
	ctx := context.Background()

	outcome, th, err := r.Resolve(ctx, "dora@example.com", intp(10))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("Expected OutcomeCreated, got %v", outcome)
	}
	if th.JobID == nil || *th.JobID != 10 {
		t.Fatalf("Expected thread linked to job 10, got %+v", th.JobID)
	}

	// The general thread stays separate.
	_, general, err := r.Resolve(ctx, "dora@example.com", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if general.ID == th.ID {
		t.Errorf("General thread must differ from job thread")
	}
}

func TestResolver_UnknownJobFallsBackToGeneral(t *testing.T) {
	store := newMemStore()
	r := newTestResolver(store)
	ctx := context.Background()

	_, general, _ := r.Resolve(ctx, "erik@example.com", nil)

	outcome, th, err := r.Resolve(ctx, "erik@example.com", intp(999))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome != OutcomeExisting {
		t.Errorf("Expected OutcomeExisting, got %v", outcome)
	}
	if th.ID != general.ID {
		t.Errorf("Expected reuse of general thread %d, got %d", general.ID, th.ID)
	}
	if th.JobID != nil {
		t.Errorf("Expected nil job link, got %v", *th.JobID)
	}
}

func TestResolver_ForeignJobFallsBackToGeneral(t *testing.T) {
	store := newMemStore()
	owner := store.insertUser("Owner", "owner@example.com")
	store.jobs[7] = model.Job{ID: 7, UserID: owner, Status: "paid"}
	r := newTestResolver(store)

	_, th, err := r.Resolve(context.Background(), "stranger@example.com", intp(7))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if th.JobID != nil {
		t.Errorf("Foreign job must not be linked, got job %v", *th.JobID)
	}
}

func TestResolver_ThreadCreateRaceReusesWinner(t *testing.T) {
	store := newMemStore()
	store.threadRaceOnce = true
	r := newTestResolver(store)

	outcome, th, err := r.Resolve(context.Background(), "fred@example.com", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if outcome != OutcomeExisting {
		t.Errorf("Expected OutcomeExisting after lost race, got %v", outcome)
	}
	if th == nil {
		t.Fatal("Expected the winner's thread, got nil")
	}
	if len(store.threads) != 1 {
		t.Errorf("Expected 1 thread after race, got %d", len(store.threads))
	}
}

func TestResolver_UserCreateRaceReusesWinner(t *testing.T) {
	store := newMemStore()
	store.userRaceOnce = true
	r := newTestResolver(store)

	_, th, err := r.Resolve(context.Background(), "gina@example.com", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(store.users) != 1 {
		t.Fatalf("Expected 1 user after race, got %d", len(store.users))
	}
	if store.users[th.UserID].DisplayName != "Racer" {
		t.Errorf("Expected the winner's user row to be reused")
	}
}

func TestResolver_LookupErrorFails(t *testing.T) {
	store := newMemStore()
	store.addressErr = errors.New("connection refused")
	r := newTestResolver(store)

	outcome, th, err := r.Resolve(context.Background(), "hank@example.com", nil)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if outcome != OutcomeFailed || th != nil {
		t.Errorf("Expected OutcomeFailed with nil thread, got %v, %+v", outcome, th)
	}
}

func TestResolver_ThreadCreateErrorFails(t *testing.T) {
	store := newMemStore()
	store.threadCreateErr = errors.New("disk full")
	r := newTestResolver(store)
	ctx := context.Background()

	outcome, _, err := r.Resolve(ctx, "iris@example.com", nil)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if outcome != OutcomeFailed {
		t.Errorf("Expected OutcomeFailed, got %v", outcome)
	}

	// The user row from the failed attempt makes the retry idempotent.
	store.threadCreateErr = nil
	outcome, th, err := r.Resolve(ctx, "iris@example.com", nil)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if outcome != OutcomeCreated || th == nil {
		t.Fatalf("Expected thread on retry, got %v, %+v", outcome, th)
	}
	if len(store.users) != 1 {
		t.Errorf("Retry must reuse the user from the failed attempt, got %d users", len(store.users))
	}
}

func TestDisplayNameFor(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"anna@example.com", "Anna"},
		{"bob.smith@example.com", "Bob.smith"},
		{"émile@example.fr", "Émile"},
		{"@example.com", "@example.com"},
		{"noatsign", "Noatsign"},
	}
	for _, tc := range cases {
		if got := displayNameFor(tc.address); got != tc.want {
			t.Errorf("displayNameFor(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}
