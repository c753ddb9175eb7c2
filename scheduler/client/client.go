// Package client talks to a nodesched api server over HTTP/JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/scheduler/api"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/ledger"
)

const DefaultHttpTries = 5 // 0 and 1 both mean 1 try total

// Doer is satisfied by *http.Client and *pester.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func MakePesterClient() *pester.Client {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = DefaultHttpTries
	client.LogHook = func(e pester.ErrEntry) {
		log.Errorf("Retrying after failed attempt: %+v", e)
	}
	return client
}

// StatusError is a non 200 reply. Result is set when the server computed a
// round but failed to commit it.
type StatusError struct {
	Code   int
	Msg    string
	Result *domain.Result
}

func (e *StatusError) Error() string {
	return e.Msg
}

// Client is not bound to a connection and may be shared.
type Client struct {
	root string
	http Doer
}

// NewClient returns a Client for the server at addr, "host:port" or a url.
func NewClient(addr string, d Doer) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	if d == nil {
		d = MakePesterClient()
	}
	return &Client{root: strings.TrimSuffix(addr, "/"), http: d}
}

func (c *Client) RunRound(ctx context.Context, req domain.Request) (*domain.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling request")
	}
	res := &domain.Result{}
	err = c.call(ctx, http.MethodPost, api.RoundsPath, body, res)
	if se, ok := err.(*StatusError); ok && se.Result != nil {
		return se.Result, err
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Ledger(ctx context.Context) (ledger.Ledger, error) {
	l := ledger.New()
	if err := c.call(ctx, http.MethodGet, api.LedgerPath, nil, &l); err != nil {
		return nil, err
	}
	return l, nil
}

func (c *Client) Algorithms(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.call(ctx, http.MethodGet, api.AlgorithmsPath, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// call decodes the Response field of the reply into out.
func (c *Client) call(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.root+path, rd)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debugf("%s %s", method, req.URL)
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, req.URL)
	}
	defer resp.Body.Close()

	raw := struct {
		HttpStatusCode int             `json:"httpStatusCode"`
		ErrorMsg       string          `json:"errorMsg"`
		Response       json.RawMessage `json:"response"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return &StatusError{Code: resp.StatusCode, Msg: errors.Wrapf(err, "%s %s returned %s", method, req.URL, resp.Status).Error()}
	}
	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Code: resp.StatusCode, Msg: raw.ErrorMsg}
		if len(raw.Response) > 0 && string(raw.Response) != "null" {
			if res := (&domain.Result{}); json.Unmarshal(raw.Response, res) == nil {
				se.Result = res
			}
		}
		return se
	}
	if len(raw.Response) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw.Response, out), "decoding response")
}
