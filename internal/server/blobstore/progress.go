package blobstore

import (
	"io"
	"sync"
)

// progressReader reports bytes read through fn. Seeking back resets the
// counter, since the SDK may read the body once for checksums and again
// for transmission.
type progressReader struct {
	mu    sync.Mutex
	r     io.ReadSeeker
	total int64
	sent  int64
	fn    ProgressFunc
}

func newProgressReader(r io.ReadSeeker, total int64, fn ProgressFunc) io.ReadSeeker {
	if fn == nil {
		return r
	}
	if total <= 0 {
		total = -1
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		sent := p.sent
		p.mu.Unlock()
		p.fn(sent, p.total)
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.r.Seek(offset, whence)
	if err == nil {
		p.mu.Lock()
		p.sent = pos
		p.mu.Unlock()
	}
	return pos, err
}
