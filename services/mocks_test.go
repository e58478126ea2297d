package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/repositories"
	"github.com/matchforge/registration-system/storage"
)

// fakeTournamentRepo implements repositories.TournamentRepository for tests.
type fakeTournamentRepo struct {
	byID   map[int]*models.Tournament
	nextID int
	getErr error
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{byID: make(map[int]*models.Tournament), nextID: 1}
}

func (f *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if t, ok := f.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	if _, ok := f.byID[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTournamentRepo) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(f.byID))
	for _, t := range f.byID {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// fakeSportEventRepo implements repositories.SportEventRepository. The
// capacity counter is mutex-guarded so concurrency tests exercise the same
// atomicity contract the conditional UPDATE provides.
type fakeSportEventRepo struct {
	mu     sync.Mutex
	byID   map[int]*models.SportEvent
	nextID int
	getErr error
	incErr error
}

func newFakeSportEventRepo() *fakeSportEventRepo {
	return &fakeSportEventRepo{byID: make(map[int]*models.SportEvent), nextID: 1}
}

func (f *fakeSportEventRepo) Create(ctx context.Context, e *models.SportEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.nextID
	f.nextID++
	e.CreatedAt = time.Now()
	f.byID[e.ID] = e
	return nil
}

func (f *fakeSportEventRepo) GetByID(ctx context.Context, id int) (*models.SportEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repositories.ErrSportEventNotFound
}

func (f *fakeSportEventRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.SportEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.SportEvent, 0)
	for _, e := range f.byID {
		if e.TournamentID == tournamentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSportEventRepo) TryIncrementRegistered(ctx context.Context, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return false, f.incErr
	}
	e, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	if e.RegisteredEntries >= e.Capacity {
		return false, nil
	}
	e.RegisteredEntries++
	return true, nil
}

func (f *fakeSportEventRepo) DecrementRegistered(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return repositories.ErrSportEventNotFound
	}
	if e.RegisteredEntries > 0 {
		e.RegisteredEntries--
	}
	return nil
}

// fakeJoinRequestRepo implements repositories.JoinRequestRepository. The
// active-request uniqueness rule of the partial index is reproduced in
// Create.
type fakeJoinRequestRepo struct {
	mu        sync.Mutex
	byID      map[int]*models.JoinRequest
	nextID    int
	createErr error
	updateErr error
}

func newFakeJoinRequestRepo() *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{byID: make(map[int]*models.JoinRequest), nextID: 1}
}

func (f *fakeJoinRequestRepo) Create(ctx context.Context, jr *models.JoinRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.UserID == jr.UserID && existing.SportEventID == jr.SportEventID &&
			existing.Status != models.JoinRequestRejected {
			return repositories.ErrJoinRequestConflict
		}
	}
	jr.ID = f.nextID
	f.nextID++
	jr.SubmittedAt = time.Now()
	cp := *jr
	f.byID[jr.ID] = &cp
	return nil
}

func (f *fakeJoinRequestRepo) FindByID(ctx context.Context, id int) (*models.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if jr, ok := f.byID[id]; ok {
		cp := *jr
		return &cp, nil
	}
	return nil, repositories.ErrJoinRequestNotFound
}

func (f *fakeJoinRequestRepo) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.JoinRequestStatus) ([]*models.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.JoinRequest, 0)
	for _, jr := range f.byID {
		if jr.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && jr.Status != *statusFilter {
			continue
		}
		cp := *jr
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeJoinRequestRepo) UpdateStatusIfPending(ctx context.Context, id int, status models.JoinRequestStatus, reviewerNotes *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return false, f.updateErr
	}
	jr, ok := f.byID[id]
	if !ok || jr.Status != models.JoinRequestPending {
		return false, nil
	}
	now := time.Now()
	jr.Status = status
	jr.ReviewedAt = &now
	jr.ReviewerNotes = reviewerNotes
	return true, nil
}

// fakeParticipantRepo implements repositories.ParticipantRepository.
type fakeParticipantRepo struct {
	mu        sync.Mutex
	byID      map[int]*models.Participant
	nextID    int
	createErr error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{byID: make(map[int]*models.Participant), nextID: 1}
}

func (f *fakeParticipantRepo) Create(ctx context.Context, p *models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.JoinRequestID == p.JoinRequestID {
			return repositories.ErrParticipantConflict
		}
	}
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeParticipantRepo) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) FindByJoinRequest(ctx context.Context, joinRequestID int) (*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.JoinRequestID == joinRequestID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) ListBySportEvent(ctx context.Context, sportEventID int) ([]*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Participant, 0)
	for _, p := range f.byID {
		if p.SportEventID == sportEventID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeMatchRepo implements repositories.MatchRepository.
type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   []*models.Match
	nextID    int
	createErr error
	countErr  error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1}
}

func (f *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, m := range matches {
		m.ID = f.nextID
		f.nextID++
		cp := *m
		f.matches = append(f.matches, &cp)
	}
	return nil
}

func (f *fakeMatchRepo) CountByEventAndRound(ctx context.Context, sportEventID, round int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, m := range f.matches {
		if m.SportEventID == sportEventID && m.Round == round {
			count++
		}
	}
	return count, nil
}

func (f *fakeMatchRepo) ListBySportEvent(ctx context.Context, sportEventID int) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.SportEventID == sportEventID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeUploader implements storage.FileUploader and records every call.
type fakeUploader struct {
	mu        sync.Mutex
	uploads   []string
	deletes   []string
	latestKey string
	uploadErr error
	deleteErr error
	counter   int
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, size int64, reader io.Reader) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if size > storage.MaxUploadSize {
		return nil, storage.ErrUploadTooLarge
	}
	f.counter++
	f.uploads = append(f.uploads, key)
	return &storage.UploadResult{
		Key:      key,
		Location: "https://cdn.example.com/" + key,
		ETag:     fmt.Sprintf("etag-%d", f.counter),
	}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (f *fakeUploader) ListLatest(ctx context.Context, prefix string) (string, error) {
	return f.latestKey, nil
}
