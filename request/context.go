package request

import (
	"context"
	"net/http"
)

// Context carries one inbound request through the middleware chain.
// The caller identity is immutable once assigned, it partitions the
// rate limiting window and is never persisted beyond it.
type Context struct {
	request        *http.Request
	responseWriter http.ResponseWriter

	endpoint string

	userId         string
	callerIdentity string
}

func NewContext(request *http.Request, response http.ResponseWriter, endpoint string) *Context {
	return &Context{
		request:        request,
		responseWriter: response,
		endpoint:       endpoint,
	}
}

func (c *Context) Request() *http.Request {
	return c.request
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.responseWriter
}

func (c *Context) SetResponseWriter(writer http.ResponseWriter) {
	c.responseWriter = writer
}

func (c *Context) Endpoint() string {
	return c.endpoint
}

// SetUserId attaches an authenticated user id. Authentication itself is an
// external collaborator, the gate only consumes its result.
func (c *Context) SetUserId(userId string) {
	c.userId = userId
}

func (c *Context) UserId() string {
	return c.userId
}

func (c *Context) SetCallerIdentity(identity string) {
	c.callerIdentity = identity
}

func (c *Context) CallerIdentity() string {
	return c.callerIdentity
}

func (c *Context) Context() context.Context {
	return c.request.Context()
}

func (c *Context) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}
