package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/spec-kit/contest-provisioner/internal/domjudge"
)

// reply is one scripted answer: a response, a transport error, or a panic.
type reply struct {
	status int
	body   string
	err    error
	panic  string
}

type remoteCall struct {
	method string
	path   string
	body   map[string]any
}

// fakeRemote serves scripted replies keyed by "METHOD path". Each key's queue is
// consumed in order and its last reply repeats.
type fakeRemote struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []remoteCall
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{replies: make(map[string][]reply)}
}

func (f *fakeRemote) on(method, path string, replies ...reply) *fakeRemote {
	f.replies[method+" "+path] = append(f.replies[method+" "+path], replies...)
	return f
}

func (f *fakeRemote) Get(ctx context.Context, path string) (*domjudge.Response, error) {
	return f.serve("GET", path, nil)
}

func (f *fakeRemote) PostJSON(ctx context.Context, path string, body any) (*domjudge.Response, error) {
	return f.serve("POST", path, body)
}

func (f *fakeRemote) serve(method, path string, body any) (*domjudge.Response, error) {
	f.mu.Lock()
	call := remoteCall{method: method, path: path}
	if body != nil {
		raw, _ := json.Marshal(body)
		_ = json.Unmarshal(raw, &call.body)
	}
	f.calls = append(f.calls, call)

	key := method + " " + path
	queue := f.replies[key]
	if len(queue) == 0 {
		f.mu.Unlock()
		return nil, errors.New("no scripted reply for " + key)
	}
	r := queue[0]
	if len(queue) > 1 {
		f.replies[key] = queue[1:]
	}
	f.mu.Unlock()

	if r.panic != "" {
		panic(r.panic)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &domjudge.Response{StatusCode: r.status, Body: []byte(r.body)}, nil
}

func (f *fakeRemote) callsTo(method, path string) []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []remoteCall
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			out = append(out, c)
		}
	}
	return out
}
