package services

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/axellelanca/linkshortener/internal/errors"
	"github.com/axellelanca/linkshortener/internal/models"
	"github.com/axellelanca/linkshortener/internal/repository"
)

// fakeRepository est un store en mémoire permettant d'injecter des pannes.
type fakeRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]*models.URLRecord

	nextIDErr    error
	codeTaken    func(code string) bool
	saveErrs     []error // consommées une par une avant l'insertion réelle
	incrementErr error

	saveCalls   int
	findCalls   int
	deletedNows []time.Time
}

var _ repository.URLRepository = (*fakeRepository)(nil)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string]*models.URLRecord)}
}

func (f *fakeRepository) NextID(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextIDErr != nil {
		return 0, f.nextIDErr
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeRepository) ExistsCode(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codeTaken != nil && f.codeTaken(code) {
		return true, nil
	}
	_, ok := f.records[code]
	return ok, nil
}

func (f *fakeRepository) ExistsAlias(_ context.Context, alias string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if a, ok := r.CustomAlias(); ok && a == alias {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) Save(_ context.Context, record *models.URLRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if len(f.saveErrs) > 0 {
		err := f.saveErrs[0]
		f.saveErrs = f.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := f.records[record.Code]; ok {
		return apperrors.ErrDuplicateKey
	}
	stored := *record
	f.records[record.Code] = &stored
	return nil
}

func (f *fakeRepository) FindByCode(_ context.Context, code string) (*models.URLRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if r, ok := f.records[code]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, &apperrors.ErrLinkNotFound{ShortCode: code}
}

func (f *fakeRepository) FindByAlias(_ context.Context, alias string) (*models.URLRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if a, ok := r.CustomAlias(); ok && a == alias {
			copied := *r
			return &copied, nil
		}
	}
	return nil, &apperrors.ErrLinkNotFound{ShortCode: alias}
}

func (f *fakeRepository) IncrementClicks(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return false, f.incrementErr
	}
	r, ok := f.records[code]
	if !ok {
		return false, nil
	}
	r.Clicks++
	return true, nil
}

func (f *fakeRepository) ExpiredCodes(_ context.Context, now time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var codes []string
	for code, r := range f.records {
		if exp, ok := r.Expiry(); ok && exp.Before(now) {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

func (f *fakeRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedNows = append(f.deletedNows, now)
	var n int64
	for code, r := range f.records {
		if exp, ok := r.Expiry(); ok && exp.Before(now) {
			delete(f.records, code)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) Ping(context.Context) error { return nil }

// fakeCache compte les lectures pour vérifier quelles opérations passent par le cache.
type fakeCache struct {
	mu      sync.Mutex
	records map[string]*models.URLRecord
	gets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*models.URLRecord)}
}

func (c *fakeCache) Get(_ context.Context, code string) (*models.URLRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	r, ok := c.records[code]
	return r, ok, nil
}

func (c *fakeCache) Set(_ context.Context, record *models.URLRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *record
	c.records[record.Code] = &copied
	return nil
}

func (c *fakeCache) Delete(_ context.Context, codes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range codes {
		delete(c.records, code)
	}
	return nil
}

// fakeClock est une horloge manuelle.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
