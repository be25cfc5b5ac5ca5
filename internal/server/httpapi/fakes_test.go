package httpapi

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/services"
	"github.com/dmitrijs2005/travelog/internal/server/session"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeEntries struct {
	mu      sync.Mutex
	items   []*models.Entry
	orphans []*models.File
	calls   []string
	uploads []string
	nextID  int
	failAll bool
}

func newFakeEntries(items ...*models.Entry) *fakeEntries {
	for _, e := range items {
		if e.Comments == nil {
			e.Comments = []models.Comment{}
		}
	}
	return &fakeEntries{items: items}
}

func (f *fakeEntries) find(id string) (int, *models.Entry) {
	for i, e := range f.items {
		if e.ID == id {
			return i, e
		}
	}
	return -1, nil
}

func (f *fakeEntries) List(ctx context.Context) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errBoom{}
	}
	out := make([]*models.Entry, 0, len(f.items))
	for _, e := range f.items {
		cp := *e
		cp.Comments = append([]models.Comment(nil), e.Comments...)
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeEntries) Get(ctx context.Context, id string) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, e := f.find(id)
	if e == nil {
		return nil, common.ErrorNotFound
	}
	cp := *e
	cp.Comments = append([]models.Comment(nil), e.Comments...)
	return &cp, nil
}

func (f *fakeEntries) Create(ctx context.Context, draft models.Entry, up blobstore.Upload) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(up.Body)
	if err != nil {
		return nil, err
	}
	if up.Progress != nil {
		up.Progress(int64(len(data)), up.Size)
	}
	f.calls = append(f.calls, "upload", "create")
	f.uploads = append(f.uploads, up.Name+":"+string(data))
	f.nextID++
	draft.ID = fmt.Sprintf("n%d", f.nextID)
	draft.PhotoURL = "http://blob/" + up.Name
	draft.Comments = []models.Comment{}
	f.items = append(f.items, &draft)
	cp := draft
	return &cp, nil
}

func (f *fakeEntries) Update(ctx context.Context, id string, patch models.EntryPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, e := f.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	f.calls = append(f.calls, "update:"+id)
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Comment != nil {
		e.Comment = *patch.Comment
	}
	return nil
}

func (f *fakeEntries) SetDeleted(ctx context.Context, id string, deleted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, e := f.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	f.calls = append(f.calls, fmt.Sprintf("set-deleted:%s:%t", id, deleted))
	e.IsDeleted = deleted
	return nil
}

func (f *fakeEntries) PermanentlyDelete(ctx context.Context, id, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, _ := f.find(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	f.calls = append(f.calls, "delete-blob:"+photoURL, "delete-doc:"+id)
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeEntries) AppendComment(ctx context.Context, id string, c models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, e := f.find(id)
	if e == nil {
		return common.ErrorNotFound
	}
	f.calls = append(f.calls, "append:"+id)
	e.Comments = append(e.Comments, c)
	return nil
}

func (f *fakeEntries) Orphans(ctx context.Context) ([]*models.File, error) {
	return f.orphans, nil
}

type fakeUsers struct {
	calls  []string
	err    error
	issued *services.TokenPair
}

func (u *fakeUsers) pair(name string) *services.TokenPair {
	if u.issued != nil {
		return u.issued
	}
	return &services.TokenPair{AccessToken: "acc", RefreshToken: "ref", UserID: "u1", DisplayName: name}
}

func (u *fakeUsers) SignUp(ctx context.Context, email, password, displayName string) (*services.TokenPair, error) {
	u.calls = append(u.calls, "signup:"+email)
	if u.err != nil {
		return nil, u.err
	}
	return u.pair(displayName), nil
}

func (u *fakeUsers) SignIn(ctx context.Context, email, password string) (*services.TokenPair, error) {
	u.calls = append(u.calls, "signin:"+email)
	if u.err != nil {
		return nil, u.err
	}
	return u.pair("kim"), nil
}

func (u *fakeUsers) SignOut(ctx context.Context, userID string) error {
	u.calls = append(u.calls, "signout:"+userID)
	return u.err
}

func (u *fakeUsers) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	u.calls = append(u.calls, "refresh:"+refreshToken)
	if u.err != nil {
		return nil, u.err
	}
	return u.pair("kim"), nil
}

func (u *fakeUsers) UpdateDisplayName(ctx context.Context, userID, name string) error {
	u.calls = append(u.calls, "profile:"+userID+":"+name)
	return u.err
}

// claimsResolver trusts the token claims unless the user is listed as
// signed out.
type claimsResolver struct {
	signedOut map[string]bool
}

func (r claimsResolver) Resolve(userID, tokenName string, issuedAt time.Time) session.State {
	if r.signedOut[userID] {
		return session.Anonymous
	}
	return session.State{LoggedIn: true, UserID: userID, UserName: tokenName}
}
