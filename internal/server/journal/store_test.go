package journal

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/models"
)

type boom struct{}

func (boom) Error() string { return "boom" }

// memStore is an in-memory Store that mirrors the ordering guarantees of
// the entry service: upload before create, blob delete before document
// delete, and document delete even when the blob delete fails.
type memStore struct {
	mu      sync.Mutex
	items   []*models.Entry
	blobs   map[string]bool
	nextID  int
	calls   []string
	listErr error
	putErr  error
	blobErr error
	mutErr  error
}

func newMemStore(seed ...*models.Entry) *memStore {
	s := &memStore{blobs: map[string]bool{}}
	for _, e := range seed {
		if e.Comments == nil {
			e.Comments = []models.Comment{}
		}
		s.items = append(s.items, e)
		if e.PhotoURL != "" {
			s.blobs[e.PhotoURL] = true
		}
	}
	return s
}

func (s *memStore) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *memStore) find(id string) (int, *models.Entry) {
	for i, e := range s.items {
		if e.ID == id {
			return i, e
		}
	}
	return -1, nil
}

func (s *memStore) List(ctx context.Context) ([]*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("list")
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.Entry, 0, len(s.items))
	for _, e := range s.items {
		cp := *e
		cp.Comments = append([]models.Comment{}, e.Comments...)
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memStore) Get(ctx context.Context, id string) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("get")
	_, e := s.find(id)
	if e == nil {
		return nil, common.ErrorNotFound
	}
	cp := *e
	cp.Comments = append([]models.Comment{}, e.Comments...)
	return &cp, nil
}

func (s *memStore) Create(ctx context.Context, draft models.Entry, up blobstore.Upload) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("upload")
	if s.putErr != nil {
		return nil, s.putErr
	}
	b, _ := io.ReadAll(up.Body)
	if up.Progress != nil {
		up.Progress(int64(len(b)), up.Size)
	}
	url := "http://blob/images/" + up.Name
	s.blobs[url] = true

	s.record("create")
	if s.mutErr != nil {
		return nil, s.mutErr
	}
	s.nextID++
	draft.ID = fmt.Sprintf("new%d", s.nextID)
	draft.PhotoURL = url
	draft.IsDeleted = false
	draft.Comments = []models.Comment{}
	cp := draft
	s.items = append(s.items, &cp)
	return &draft, nil
}

func (s *memStore) Update(ctx context.Context, id string, p models.EntryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("update")
	if s.mutErr != nil {
		return s.mutErr
	}
	_, e := s.find(id)
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

func (s *memStore) SetDeleted(ctx context.Context, id string, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(fmt.Sprintf("set-deleted:%t", deleted))
	if s.mutErr != nil {
		return s.mutErr
	}
	_, e := s.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	e.IsDeleted = deleted
	return nil
}

func (s *memStore) PermanentlyDelete(ctx context.Context, id, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("delete-blob")
	if s.blobErr == nil {
		delete(s.blobs, photoURL)
	}
	s.record("delete-doc")
	if s.mutErr != nil {
		return s.mutErr
	}
	i, _ := s.find(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *memStore) AppendComment(ctx context.Context, id string, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("append")
	if s.mutErr != nil {
		return s.mutErr
	}
	_, e := s.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	e.Comments = append(e.Comments, c)
	return nil
}

func (s *memStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
