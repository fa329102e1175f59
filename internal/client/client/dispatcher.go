package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/fleamarket/internal/common"
	"github.com/dmitrijs2005/fleamarket/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds every call unless WithTimeout says otherwise.
const DefaultTimeout = 10 * time.Second

const maxBodySize = 8 << 20

// Request describes one backend call. Path is relative to the base URL and
// never leaves it: ".." segments stop at the base.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Sender is anything that can dispatch a Request. *Dispatcher is the only
// production implementation.
type Sender interface {
	Send(ctx context.Context, req Request) (json.RawMessage, error)
}

// CredentialSource yields the bearer credential for the outgoing stage.
// An empty string means anonymous. It must not block.
type CredentialSource interface {
	Credential() string
}

// Observer is told about every failed call before Send returns.
type Observer interface {
	OnFailure(ctx context.Context, f *Failure)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, f *Failure)

func (fn ObserverFunc) OnFailure(ctx context.Context, f *Failure) { fn(ctx, f) }

type anonymous struct{}

func (anonymous) Credential() string { return "" }

// Dispatcher is the single chokepoint for backend calls. It attaches the
// credential, unwraps the envelope and reports failures to its observers.
type Dispatcher struct {
	baseURL   *url.URL
	http      *http.Client
	base      *http.Client
	timeout   time.Duration
	transport http.RoundTripper
	creds     CredentialSource
	observers []Observer
	log       logging.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	maxBody   int64
}

type Option func(*Dispatcher)

func WithTimeout(d time.Duration) Option {
	return func(s *Dispatcher) { s.timeout = d }
}

// WithHTTPClient uses a copy of c. The dispatcher timeout replaces
// c.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Dispatcher) { s.base = c }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(s *Dispatcher) { s.transport = rt }
}

func WithCredentialSource(src CredentialSource) Option {
	return func(s *Dispatcher) { s.creds = src }
}

// WithObserver appends o; observers run in registration order.
func WithObserver(o Observer) Option {
	return func(s *Dispatcher) { s.observers = append(s.observers, o) }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Dispatcher) { s.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Dispatcher) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Dispatcher) { s.tracer = t }
}

// New builds a Dispatcher for baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Dispatcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	d := &Dispatcher{
		baseURL: u,
		timeout: DefaultTimeout,
		creds:   anonymous{},
		maxBody: maxBodySize,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logging.Nop()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer("github.com/dmitrijs2005/fleamarket/internal/client/client")
	}
	hc := &http.Client{}
	if d.base != nil {
		*hc = *d.base
	}
	hc.Timeout = d.timeout
	if d.transport != nil {
		hc.Transport = d.transport
	}
	d.http = hc
	return d, nil
}

// AddObserver registers o after construction. It is meant for the
// composition root, before the first call is sent.
func (d *Dispatcher) AddObserver(o Observer) {
	d.observers = append(d.observers, o)
}

// Send performs req and returns the envelope data on code 200. Any other
// outcome returns a *Failure after every observer has seen it.
func (d *Dispatcher) Send(ctx context.Context, req Request) (json.RawMessage, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	requestID := uuid.NewString()

	ctx, span := d.tracer.Start(ctx, "fleamarket.dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", req.Path),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	log := d.log.With("method", method, "path", req.Path, "request_id", requestID)
	start := time.Now()

	data, failure := d.roundTrip(ctx, method, requestID, req)
	d.metrics.observe(method, failure, time.Since(start))

	if failure == nil {
		log.Debug(ctx, "request succeeded", "elapsed", time.Since(start))
		return data, nil
	}

	span.RecordError(failure)
	span.SetStatus(codes.Error, failure.Message)
	span.SetAttributes(attribute.String("failure.kind", failure.Kind.String()), attribute.Int("envelope.code", failure.Code))
	log.Warn(ctx, "request failed", "kind", failure.Kind.String(), "code", failure.Code, "error", failure.Error())

	for _, o := range d.observers {
		o.OnFailure(ctx, failure)
	}
	return nil, failure
}

func (d *Dispatcher) roundTrip(ctx context.Context, method, requestID string, req Request) (json.RawMessage, *Failure) {
	httpReq, err := d.newHTTPRequest(ctx, method, requestID, req)
	if err != nil {
		return nil, &Failure{Kind: KindTransport, Message: MessageNetworkError, Err: err}
	}

	resp, err := d.http.Do(httpReq)
	if err != nil {
		return nil, &Failure{Kind: KindTransport, Message: MessageNetworkError, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBody+1))
	if err != nil {
		return nil, &Failure{Kind: KindTransport, Message: MessageNetworkError, Err: err}
	}
	if int64(len(body)) > d.maxBody {
		return nil, &Failure{Kind: KindTransport, Message: MessageResponseTooLarge,
			Err: fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, d.maxBody)}
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			err = fmt.Errorf("unexpected status %s", resp.Status)
		} else {
			err = fmt.Errorf("malformed response: %w", err)
		}
		return nil, &Failure{Kind: KindTransport, Message: MessageNetworkError, Err: err}
	}
	return env.result()
}

// newHTTPRequest runs the outgoing stage. Header overrides apply before the
// request id and credential so neither can be replaced by a caller.
func (d *Dispatcher) newHTTPRequest(ctx context.Context, method, requestID string, req Request) (*http.Request, error) {
	u, err := d.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range req.Header {
		if http.CanonicalHeaderKey(k) == common.AuthorizationHeaderName {
			continue
		}
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)

	if token := d.creds.Credential(); token != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return httpReq, nil
}

// resolve appends p to the base path. p is unescaped and cleaned as a rooted
// path first, so neither "/../x" nor "%2e%2e/x" can climb above the base.
func (d *Dispatcher) resolve(p string) (*url.URL, error) {
	raw, err := url.PathUnescape(p)
	if err != nil {
		return nil, fmt.Errorf("bad request path %q: %w", p, err)
	}

	u := *d.baseURL
	u.RawPath = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	if raw != "" {
		u.Path += path.Clean("/" + raw)
	}
	return &u, nil
}

// Call sends req and decodes the envelope data into T. Absent or null data
// leaves T at its zero value.
func Call[T any](ctx context.Context, s Sender, req Request) (T, error) {
	var out T
	data, err := s.Send(ctx, req)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s %s data: %w", req.Method, req.Path, err)
	}
	return out, nil
}
