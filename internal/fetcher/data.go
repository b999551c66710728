package fetcher

import (
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/headers"
	"github.com/rohmanhakim/ethicrawl/internal/resource"
)

// Request extends a Resource with the per-request knobs a Fetcher needs:
// how long to wait, and what headers to send.
type Request struct {
	resource resource.Resource
	timeout  time.Duration
	headers  *headers.Headers
}

// NewRequest builds a Request with a positive timeout. A nil headers
// argument is treated as empty.
func NewRequest(res resource.Resource, timeout time.Duration, hdrs *headers.Headers) Request {
	if hdrs == nil {
		hdrs = headers.New()
	}
	return Request{resource: res, timeout: timeout, headers: hdrs}
}

func (r Request) Resource() resource.Resource { return r.resource }
func (r Request) Timeout() time.Duration      { return r.timeout }
func (r Request) Headers() *headers.Headers   { return r.headers }

// Response extends a Resource with what came back: the request that
// produced it, the status code, headers, and both raw and decoded bodies.
type Response struct {
	resource resource.Resource
	request  Request
	status   int
	headers  *headers.Headers
	content  []byte
	text     string
}

// NewResponse constructs a Response. status must be in [100,599].
func NewResponse(res resource.Resource, req Request, status int, hdrs *headers.Headers, content []byte, text string) Response {
	if hdrs == nil {
		hdrs = headers.New()
	}
	return Response{
		resource: res,
		request:  req,
		status:   status,
		headers:  hdrs,
		content:  content,
		text:     text,
	}
}

func (r Response) Resource() resource.Resource { return r.resource }
func (r Response) Request() Request            { return r.request }
func (r Response) Status() int                 { return r.status }
func (r Response) Headers() *headers.Headers   { return r.headers }
func (r Response) Content() []byte             { return r.content }
func (r Response) Text() string                { return r.text }

// Ok reports whether the response status is in the 2xx range.
func (r Response) Ok() bool { return r.status >= 200 && r.status < 300 }
