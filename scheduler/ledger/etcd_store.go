package ledger

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	DefaultEtcdPrefix      = "/nodesched/ledger/"
	DefaultEtcdDialTimeout = 5 * time.Second
	DefaultEtcdRetries     = 5
)

var errConflict = errors.New("ledger keys changed during commit")

// BadValueError reports a ledger key whose value is not a usage number.
// Such a key is never overwritten: committing over it would lose its
// revision and conflict on every try.
type BadValueError struct {
	Key string
	Err error
}

func (e *BadValueError) Error() string {
	return "bad ledger value at " + e.Key + ": " + e.Err.Error()
}

// EtcdStore keeps one key per node under a prefix. Commit is a compare and
// swap transaction over every touched key, retried on conflict, so several
// schedulers may share a ledger safely.
type EtcdStore struct {
	client     *clientv3.Client
	prefix     string
	maxRetries uint64
}

// NewEtcdStore dials the etcd cluster at endpoints.
func NewEtcdStore(endpoints []string, prefix string, dialTimeout time.Duration, maxRetries int) (*EtcdStore, error) {
	if dialTimeout <= 0 {
		dialTimeout = DefaultEtcdDialTimeout
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "dialing etcd %v", endpoints)
	}
	return newEtcdStore(cli, prefix, maxRetries), nil
}

func newEtcdStore(cli *clientv3.Client, prefix string, maxRetries int) *EtcdStore {
	if prefix == "" {
		prefix = DefaultEtcdPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &EtcdStore{client: cli, prefix: prefix, maxRetries: uint64(maxRetries)}
}

func (s *EtcdStore) Close() error {
	return s.client.Close()
}

func (s *EtcdStore) Load(ctx context.Context) (Ledger, error) {
	l, _, err := s.get(ctx)
	return l, err
}

func (s *EtcdStore) Commit(ctx context.Context, usage map[string]float64) (Ledger, error) {
	if err := CheckUsage(usage); err != nil {
		return nil, err
	}
	var committed Ledger
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	try := 1
	err := backoff.Retry(func() error {
		l, err := s.commitOnce(ctx, usage)
		if err != nil {
			log.Infof("etcd ledger commit try #%d failed: %s", try, err)
			try++
			return err
		}
		committed = l
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx))
	if err != nil {
		return nil, errors.Wrap(err, "committing ledger to etcd")
	}
	return committed, nil
}

func (s *EtcdStore) commitOnce(ctx context.Context, usage map[string]float64) (Ledger, error) {
	current, revs, err := s.get(ctx)
	if _, ok := err.(*BadValueError); ok {
		return nil, backoff.Permanent(err)
	}
	if err != nil {
		return nil, err
	}
	next, err := current.Add(usage)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	sort.Strings(names)

	cmps := make([]clientv3.Cmp, 0, len(names))
	ops := make([]clientv3.Op, 0, len(names))
	for _, name := range names {
		key := s.key(name)
		if rev, ok := revs[name]; ok {
			cmps = append(cmps, clientv3.Compare(clientv3.ModRevision(key), "=", rev))
		} else {
			cmps = append(cmps, clientv3.Compare(clientv3.CreateRevision(key), "=", 0))
		}
		ops = append(ops, clientv3.OpPut(key, formatUsage(next[name])))
	}

	resp, err := s.client.Txn(ctx).If(cmps...).Then(ops...).Commit()
	if err != nil {
		return nil, err
	}
	if !resp.Succeeded {
		return nil, errConflict
	}
	return next, nil
}

func (s *EtcdStore) get(ctx context.Context) (Ledger, map[string]int64, error) {
	resp, err := s.client.Get(ctx, s.prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading ledger prefix %s", s.prefix)
	}
	l := New()
	revs := make(map[string]int64, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		name := strings.TrimPrefix(string(kv.Key), s.prefix)
		v, err := parseUsage(kv.Value)
		if err != nil {
			return nil, nil, &BadValueError{Key: string(kv.Key), Err: err}
		}
		l[name] = v
		revs[name] = kv.ModRevision
	}
	return l, revs, nil
}

func (s *EtcdStore) key(name string) string {
	return s.prefix + name
}

func formatUsage(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseUsage(b []byte) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.Errorf("negative usage %v", v)
	}
	return v, nil
}
