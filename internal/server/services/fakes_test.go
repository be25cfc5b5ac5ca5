package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/dbx"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/identity"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/entries"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/files"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/travelog/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	nextID  int
	err     error
	renamed map[string]string
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}, renamed: map[string]string{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("u%d", f.nextID)
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdateDisplayName(ctx context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.DisplayName = name
	f.renamed[id] = name
	return nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	mu        sync.Mutex
	tokens    map[string]*models.RefreshToken
	findErr   error
	delErr    error
	createErr error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	rt, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rt
	return &cp, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteByUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	for k, v := range f.tokens {
		if v.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

// --- entries ---

type fakeEntriesRepo struct {
	mu        sync.Mutex
	items     []*models.Entry
	nextID    int
	createErr error
	deleteErr error
	appendErr error
}

func (f *fakeEntriesRepo) find(id string) (int, *models.Entry) {
	for i, e := range f.items {
		if e.ID == id {
			return i, e
		}
	}
	return -1, nil
}

func (f *fakeEntriesRepo) List(ctx context.Context) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Entry, 0, len(f.items))
	for _, e := range f.items {
		cp := *e
		cp.Comments = append([]models.Comment{}, e.Comments...)
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeEntriesRepo) Get(ctx context.Context, id string) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, e := f.find(id)
	if e == nil {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	e.ID = fmt.Sprintf("e%d", f.nextID)
	cp := *e
	f.items = append(f.items, &cp)
	return e, nil
}

func (f *fakeEntriesRepo) Update(ctx context.Context, id string, p models.EntryPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, e := f.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Comment != nil {
		e.Comment = *p.Comment
	}
	return nil
}

func (f *fakeEntriesRepo) SetDeleted(ctx context.Context, id string, deleted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, e := f.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	e.IsDeleted = deleted
	return nil
}

func (f *fakeEntriesRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	i, _ := f.find(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeEntriesRepo) AppendComment(ctx context.Context, id string, c models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	_, e := f.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	e.Comments = append(e.Comments, c)
	return nil
}

// --- files ---

type fakeFilesRepo struct {
	mu       sync.Mutex
	recorded []string
	orphaned []string
	forgot   []string
	err      error
}

func (f *fakeFilesRepo) Record(ctx context.Context, file *models.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, file.URL)
	return nil
}

func (f *fakeFilesRepo) MarkOrphaned(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orphaned = append(f.orphaned, url)
	return f.err
}

func (f *fakeFilesRepo) Forget(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgot = append(f.forgot, url)
	return f.err
}

func (f *fakeFilesRepo) ListOrphaned(ctx context.Context) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.File
	for _, u := range f.orphaned {
		out = append(out, &models.File{URL: u, Status: models.FileStatusOrphaned})
	}
	return out, f.err
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	e *fakeEntriesRepo
	f *fakeFilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		r: newFakeRefreshRepo(),
		e: &fakeEntriesRepo{},
		f: &fakeFilesRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository             { return m.e }
func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository                 { return m.f }

// --- blobs ---

type fakeBlobs struct {
	mu        sync.Mutex
	stored    map[string]bool
	putErr    error
	deleteErr error
	puts      int
	deletes   []string
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{stored: map[string]bool{}} }

func (b *fakeBlobs) Put(ctx context.Context, up blobstore.Upload) (*blobstore.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts++
	if b.putErr != nil {
		return nil, b.putErr
	}
	key := "images/" + up.Name
	url := "http://blob/" + key
	b.stored[url] = true
	if up.Progress != nil {
		up.Progress(up.Size, up.Size)
	}
	return &blobstore.Object{Key: key, URL: url, Size: up.Size}, nil
}

func (b *fakeBlobs) Delete(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, url)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.stored, url)
	return nil
}

// --- events ---

type fakeEvents struct {
	mu         sync.Mutex
	published  []identity.Change
	publishErr error
}

func (e *fakeEvents) Publish(ctx context.Context, c identity.Change) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.publishErr != nil {
		return e.publishErr
	}
	e.published = append(e.published, c)
	return nil
}

func (e *fakeEvents) Subscribe(ctx context.Context, fn func(identity.Change)) (func(), error) {
	return func() {}, nil
}
