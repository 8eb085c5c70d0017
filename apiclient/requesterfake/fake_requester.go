package requesterfake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/agro-console/apiclient"
)

var _ apiclient.Requester = (*FakeRequester)(nil)

// Call is one request seen by the fake.
type Call struct {
	Method string
	Path   string
	Body   string
}

type reply struct {
	body string
	err  error
}

// FakeRequester answers requests from canned replies keyed by method and
// path. Unknown routes fail with a 404 APIError.
type FakeRequester struct {
	replies map[string]reply
	calls   []Call
	lock    sync.RWMutex
}

func NewFakeRequester() *FakeRequester {
	return &FakeRequester{
		replies: make(map[string]reply),
	}
}

func (fr *FakeRequester) Request(_ context.Context, path string, opts *apiclient.RequestOptions) (json.RawMessage, error) {
	method := http.MethodGet
	var body string
	if opts != nil {
		if opts.Method != "" {
			method = opts.Method
		}
		body = string(opts.Body)
	}

	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.calls = append(fr.calls, Call{Method: method, Path: path, Body: body})

	r, ok := fr.replies[routeKey(method, path)]
	if !ok {
		return nil, &apiclient.APIError{Status: http.StatusNotFound, Message: fmt.Sprintf("Cannot %s %s", method, path)}
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.body == "" {
		return nil, nil
	}
	return json.RawMessage(r.body), nil
}

// Respond makes method+path succeed with body. An empty body answers nil.
func (fr *FakeRequester) Respond(method, path, body string) {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.replies[routeKey(method, path)] = reply{body: body}
}

// Fail makes method+path return err.
func (fr *FakeRequester) Fail(method, path string, err error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.replies[routeKey(method, path)] = reply{err: err}
}

// Calls returns a copy of every request seen so far.
func (fr *FakeRequester) Calls() []Call {
	fr.lock.RLock()
	defer fr.lock.RUnlock()
	return append([]Call(nil), fr.calls...)
}

// CallsTo counts the requests made to method+path.
func (fr *FakeRequester) CallsTo(method, path string) int {
	fr.lock.RLock()
	defer fr.lock.RUnlock()
	n := 0
	for _, c := range fr.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func routeKey(method, path string) string {
	return method + " " + path
}
