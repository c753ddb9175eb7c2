package ledger

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultFileRetries = 3

// fileDocument is the on-disk layout of the ledger file.
type fileDocument struct {
	Updated time.Time          `json:"updated"`
	Usage   map[string]float64 `json:"usage"`
}

// fileStore keeps the ledger in a single json file. Writes go to a temp file
// that is renamed over the ledger, so readers never see a partial document.
// Only one process should write a given path.
type fileStore struct {
	mu         sync.Mutex
	path       string
	maxRetries uint64
}

// NewFileStore returns a Store backed by the json file at path. The file and
// its directory are created on first Commit.
func NewFileStore(path string, maxRetries int) Store {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &fileStore{path: path, maxRetries: uint64(maxRetries)}
}

func (s *fileStore) Load(ctx context.Context) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

func (s *fileStore) Commit(ctx context.Context, usage map[string]float64) (Ledger, error) {
	if err := CheckUsage(usage); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	next, err := current.Add(usage)
	if err != nil {
		return nil, err
	}
	err = s.retry(ctx, func() error { return s.write(next) })
	if err != nil {
		return nil, errors.Wrapf(err, "writing ledger file %s", s.path)
	}
	log.Debugf("file ledger %s committed: %s", s.path, next)
	return next, nil
}

func (s *fileStore) read(ctx context.Context) (Ledger, error) {
	var data []byte
	err := s.retry(ctx, func() error {
		var err error
		data, err = ioutil.ReadFile(s.path)
		if os.IsNotExist(err) {
			data = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "reading ledger file %s", s.path)
	}
	if len(data) == 0 {
		return New(), nil
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing ledger file %s", s.path)
	}
	l := Ledger(doc.Usage)
	if l == nil {
		l = New()
	}
	if err := CheckUsage(l); err != nil {
		return nil, errors.Wrapf(err, "ledger file %s", s.path)
	}
	return l, nil
}

func (s *fileStore) write(l Ledger) error {
	data, err := json.MarshalIndent(fileDocument{Updated: time.Now().UTC(), Usage: l}, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(dir, filepath.Base(s.path)+".tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *fileStore) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	try := 1
	return backoff.Retry(func() error {
		err := op()
		if err != nil {
			log.Debugf("ledger file %s, try #%d failed: %s", s.path, try, err)
		}
		try++
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx))
}
