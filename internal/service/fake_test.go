package service

import (
	"context"
	"io"
	"sync"

	"github.com/five82/bodega/internal/api"
)

type call struct {
	Method   string
	Endpoint string
	Body     any
	Files    []string
}

// countingExecutor answers from a queue of canned replies and records every
// call it receives.
type countingExecutor struct {
	mu      sync.Mutex
	calls   []call
	replies []reply
}

type reply struct {
	body string
	err  error
}

func (c *countingExecutor) push(body string, err error) *countingExecutor {
	c.replies = append(c.replies, reply{body: body, err: err})
	return c
}

func (c *countingExecutor) next() (api.Response, error) {
	if len(c.replies) == 0 {
		return api.Response{Status: 200, Body: []byte(`{}`)}, nil
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	if r.err != nil {
		return api.Response{}, r.err
	}
	return api.Response{Status: 200, Body: []byte(r.body)}, nil
}

func (c *countingExecutor) Do(_ context.Context, method, endpoint string, body any) (api.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call{Method: method, Endpoint: endpoint, Body: body})
	return c.next()
}

func (c *countingExecutor) Upload(_ context.Context, method, endpoint string, form api.Form) (api.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var files []string
	for _, f := range form.Files {
		_, _ = io.Copy(io.Discard, f.Content)
		files = append(files, f.Field+"="+f.Filename)
	}
	c.calls = append(c.calls, call{Method: method, Endpoint: endpoint, Files: files})
	return c.next()
}

func (c *countingExecutor) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
