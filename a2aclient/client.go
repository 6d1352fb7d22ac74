package a2aclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/internal/httputil"
	"github.com/davidvonthenen/a2a-simple/logging"
)

// maxStreamLineSize bounds a single SSE line; generous enough for large
// model replies embedded in task snapshots.
const maxStreamLineSize = 1 << 20

// Options holds dependency overrides passed to New.
type Options struct {
	// HTTPClient overrides the pooled default client.
	HTTPClient *http.Client
	// Logger receives client telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Client invokes one remote agent over the A2A protocol. Safe for concurrent
// use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// New constructs a client for the agent hosted at baseURL.
func New(baseURL string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httputil.NewClient(httputil.DefaultConnectTimeout, httputil.DefaultResponseTimeout)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// URL returns the remote agent's base URL.
func (c *Client) URL() string { return c.baseURL }

// SendMessage invokes message/send and returns the outcome: the final task
// snapshot or a direct message reply.
func (c *Client) SendMessage(ctx context.Context, params a2a.MessageSendParams) (a2a.Event, error) {
	raw, err := c.call(ctx, a2a.MethodMessageSend, params)
	if err != nil {
		return nil, err
	}

	return a2a.UnmarshalResult(raw)
}

// GetTask invokes tasks/get.
func (c *Client) GetTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.Task, error) {
	raw, err := c.call(ctx, a2a.MethodTasksGet, params)
	if err != nil {
		return nil, err
	}

	return asTask(raw)
}

// CancelTask invokes tasks/cancel.
func (c *Client) CancelTask(ctx context.Context, params a2a.TaskIDParams) (*a2a.Task, error) {
	raw, err := c.call(ctx, a2a.MethodTasksCancel, params)
	if err != nil {
		return nil, err
	}

	return asTask(raw)
}

// StreamMessage invokes message/stream and delivers each protocol event as
// the remote agent emits it. Both channels close when the stream ends; a
// mid-stream failure is reported on the error channel.
func (c *Client) StreamMessage(ctx context.Context, params a2a.MessageSendParams) (<-chan a2a.Event, <-chan error, error) {
	rpcReq, err := a2a.NewRequest(uuid.NewString(), a2a.MethodMessageStream, params)
	if err != nil {
		return nil, nil, err
	}

	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal stream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("build stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("stream message to %s: %w", c.baseURL, err)
	}

	// A validation failure arrives as a plain JSON-RPC error body instead of
	// an event stream.
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		defer resp.Body.Close()

		var envelope a2a.Response
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, nil, fmt.Errorf("decode stream response from %s: %w", c.baseURL, err)
		}
		if envelope.Error != nil {
			return nil, nil, envelope.Error
		}

		return nil, nil, fmt.Errorf("stream message to %s: unexpected non-stream response", c.baseURL)
	}

	events := make(chan a2a.Event)
	errs := make(chan error, 1)

	go c.readStream(ctx, resp, events, errs)

	return events, errs, nil
}

// readStream parses SSE frames off the response body until it ends.
func (c *Client) readStream(ctx context.Context, resp *http.Response, events chan<- a2a.Event, errs chan<- error) {
	defer close(events)
	defer close(errs)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineSize)

	var data strings.Builder
	flush := func() error {
		if data.Len() == 0 {
			return nil
		}
		payload := data.String()
		data.Reset()

		var envelope a2a.Response
		if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
			return fmt.Errorf("decode stream frame: %w", err)
		}
		if envelope.Error != nil {
			return envelope.Error
		}

		ev, err := a2a.UnmarshalResult(envelope.Result)
		if err != nil {
			return err
		}

		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if err := flush(); err != nil {
				errs <- err
				return
			}
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Comment or field we do not handle; ignore.
		}
	}

	if err := flush(); err != nil {
		errs <- err
		return
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		errs <- fmt.Errorf("read stream from %s: %w", c.baseURL, err)
	}
}

// call performs one JSON-RPC exchange and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	start := time.Now()

	rpcReq, err := a2a.NewRequest(uuid.NewString(), method, params)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s to %s: %w", method, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s to %s: unexpected status %d", method, c.baseURL, resp.StatusCode)
	}

	var envelope a2a.Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s response from %s: %w", method, c.baseURL, err)
	}

	c.logger.Debug("a2aclient.call", "method", method, "url", c.baseURL, "duration_ms", time.Since(start).Milliseconds())

	if envelope.Error != nil {
		return nil, envelope.Error
	}

	return envelope.Result, nil
}

// asTask decodes a result that must be a task.
func asTask(raw json.RawMessage) (*a2a.Task, error) {
	result, err := a2a.UnmarshalResult(raw)
	if err != nil {
		return nil, err
	}

	task, ok := result.(*a2a.Task)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T, want task", result)
	}

	return task, nil
}
