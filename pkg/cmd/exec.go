package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"loam.dev/pkg/logutil"
	"loam.dev/pkg/metrics"
	"loam.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[cmd] ")

// Errors reported in effect results when the executor lacks the dependency
// needed by an effect.
var (
	ErrNoStore   = errors.New("no store configured")
	ErrNoHistory = errors.New("no history configured")
)

// ErrBodyTooLarge is reported in a Response whose body exceeds the limit of
// the executor. The body holds the first MaxBody bytes.
var ErrBodyTooLarge = errors.New("response body too large")

// History receives navigations recorded by HistoryChange effects.
type History interface {
	Push(url string) error
	Replace(url string) error
}

// Executor performs effects. Its fields are read-only once the executor is in
// use; a zero Executor can run every effect except those needing a store or a
// history, which resolve to ErrNoStore and ErrNoHistory.
type Executor struct {
	Store   storedefs.Store
	History History
	// Client performs Request effects; nil means http.DefaultClient.
	Client *http.Client
	// Limiter, if not nil, throttles Request effects.
	Limiter *rate.Limiter
	// Timeout, if positive, bounds each Request effect.
	Timeout time.Duration
	// MaxBody limits the size of response bodies; zero means 10 MiB.
	MaxBody int64
}

const defaultMaxBody = 10 << 20

// Exec performs exactly one effect and returns its result. The type of the
// result is documented on each effect type. Exec does not panic on effect
// failures; a panicking Call is reported as an error in its CallResult.
func (ex *Executor) Exec(ctx context.Context, eff Effect) any {
	start := time.Now()
	var (
		result any
		err    error
	)
	switch eff := eff.(type) {
	case Immediate:
		result = struct{}{}
	case Sleep:
		sleep(ctx, eff.Duration)
		result = struct{}{}
	case ReadItem:
		item := ex.readItem(ctx, eff.Key)
		result, err = item, item.Err
	case WriteItem:
		err = ex.writeItem(ctx, eff.Key, eff.Value)
		result = err
	case Call:
		cr := call(ctx, eff)
		result, err = cr, cr.Err
	case Request:
		resp := ex.request(ctx, eff)
		result, err = resp, resp.Err
	case HistoryChange:
		err = ex.navigate(eff)
		result = err
	default:
		panic(fmt.Sprintf("unknown effect %T", eff))
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		logger.Warn().Err(err).Str("effect", eff.Kind()).Msg("effect failed")
	}
	metrics.ObserveEffect(eff.Kind(), outcome, time.Since(start))
	return result
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (ex *Executor) readItem(ctx context.Context, key string) Item {
	if ex.Store == nil {
		return Item{Err: ErrNoStore}
	}
	v, ok, err := ex.Store.GetItem(ctx, key)
	return Item{v, ok, err}
}

func (ex *Executor) writeItem(ctx context.Context, key, value string) error {
	if ex.Store == nil {
		return ErrNoStore
	}
	return ex.Store.SetItem(ctx, key, value)
}

func call(ctx context.Context, c Call) (cr CallResult) {
	defer func() {
		if r := recover(); r != nil {
			cr = CallResult{Err: fmt.Errorf("call %s panicked: %v", c.Name, r)}
		}
	}()
	v, err := c.Fn(ctx)
	return CallResult{v, err}
}

func (ex *Executor) request(ctx context.Context, r Request) Response {
	if ex.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ex.Timeout)
		defer cancel()
	}
	if ex.Limiter != nil {
		if err := ex.Limiter.Wait(ctx); err != nil {
			return Response{Err: fmt.Errorf("rate limit: %w", err)}
		}
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return Response{Err: err}
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := ex.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Response{Err: err}
	}
	defer resp.Body.Close()
	maxBody := ex.MaxBody
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err == nil && int64(len(data)) > maxBody {
		data = data[:maxBody]
		err = fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxBody)
	}
	return Response{resp.StatusCode, resp.Header, data, err}
}

func (ex *Executor) navigate(h HistoryChange) error {
	if ex.History == nil {
		return ErrNoHistory
	}
	if h.Replace {
		return ex.History.Replace(h.URL)
	}
	return ex.History.Push(h.URL)
}
