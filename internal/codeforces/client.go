package codeforces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cfsubmissions/internal/errx"
	"cfsubmissions/internal/retry"
)

const (
	kDefaultBaseURL = "https://codeforces.com"
	kUserStatusPath = "/api/user.status"

	kSubmissionPagePathFormat = "/contest/%d/submission/%d"

	kHeaderAccept      = "Accept"
	kHeaderConnection  = "Connection"
	kHeaderContentType = "Content-Type"
	kHeaderUserAgent   = "User-Agent"

	kContentTypeApplicationJSON = "application/json"
	kContentTypeTextHTML        = "text/html"

	kStatusOK = "OK"

	kMaxErrorBodyBytes = 8 << 10
	kMaxPageBytes      = 16 << 20

	kDefaultRetries = 3
)

// Client is the contract the pipeline needs from the judge.
type Client interface {
	// ValidateHandle checks that handle exists. An unknown handle yields an
	// error wrapping errx.ErrInvalidHandle.
	ValidateHandle(ctx context.Context, handle string) error

	// UserStatus returns one page of a user's submissions, newest first.
	// from is 1-based. An empty slice means the history is exhausted.
	UserStatus(ctx context.Context, handle string, from, count int) ([]Submission, error)

	// FetchSubmissionPage returns the HTML of a submission's detail page.
	FetchSubmissionPage(ctx context.Context, contestID int, submissionID int64) (string, error)
}

// HttpClient is a judge client backed by net/http. Every call is retried
// Retries times after the first failure, with no delay between attempts.
type HttpClient struct {
	BaseURL   string
	UserAgent string
	Retries   int

	Http   *http.Client
	Logger *slog.Logger
}

type HttpClientOptions struct {
	BaseURL   string
	UserAgent string
	Http      *http.Client
	Logger    *slog.Logger

	// Retries defaults to 3 when negative. Zero disables retries.
	Retries int
}

func NewHttpClient(opts HttpClientOptions) *HttpClient {
	c := &HttpClient{
		BaseURL:   opts.BaseURL,
		UserAgent: opts.UserAgent,
		Retries:   opts.Retries,
		Http:      opts.Http,
		Logger:    opts.Logger,
	}
	if c.Http == nil {
		c.Http = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Retries < 0 {
		c.Retries = kDefaultRetries
	}
	return c
}

func (c *HttpClient) ValidateHandle(ctx context.Context, handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return fmt.Errorf("handle is required")
	}

	return c.withRetry(ctx, "validate handle", func(ctx context.Context) error {
		_, status, err := c.userStatus(ctx, handle, 1, 1)
		if err != nil {
			return err
		}
		if status.Status != kStatusOK {
			return retry.Permanent(fmt.Errorf("%w: %q is not a valid Codeforces handle%s",
				errx.ErrInvalidHandle, handle, formatComment(status.Comment)))
		}
		return nil
	})
}

func (c *HttpClient) UserStatus(ctx context.Context, handle string, from, count int) ([]Submission, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, fmt.Errorf("handle is required")
	}
	if from < 1 {
		return nil, fmt.Errorf("from must be >= 1, got %d", from)
	}
	if count < 1 {
		return nil, fmt.Errorf("count must be >= 1, got %d", count)
	}

	var out []Submission
	err := c.withRetry(ctx, "list submissions", func(ctx context.Context) error {
		subs, status, err := c.userStatus(ctx, handle, from, count)
		if err != nil {
			return err
		}
		if status.Status != kStatusOK {
			// The API reports rate limiting this way, so it is worth another attempt.
			return fmt.Errorf("codeforces api: user.status returned %s%s", status.Status, formatComment(status.Comment))
		}
		out = subs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch submissions of user (%s): %w", handle, err)
	}
	return out, nil
}

func (c *HttpClient) FetchSubmissionPage(ctx context.Context, contestID int, submissionID int64) (string, error) {
	endpoint := c.baseURL() + fmt.Sprintf(kSubmissionPagePathFormat, contestID, submissionID)

	var page string
	err := c.withRetry(ctx, "fetch submission page", func(ctx context.Context) error {
		req, err := c.newRequest(ctx, endpoint, kContentTypeTextHTML)
		if err != nil {
			return retry.Permanent(err)
		}

		resp, err := c.Http.Do(req)
		if err != nil {
			return fmt.Errorf("codeforces submission page request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("codeforces submission page: status %d: %s", resp.StatusCode, readSnippet(resp))
		}

		// Other statuses (e.g. a redirect target for hidden submissions) still
		// yield a page; the extractor decides whether it carries source code.
		b, err := io.ReadAll(io.LimitReader(resp.Body, kMaxPageBytes))
		if err != nil {
			return fmt.Errorf("read codeforces submission page: %w", err)
		}
		page = string(b)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch submission %d of contest %d: %w", submissionID, contestID, err)
	}
	return page, nil
}

func (c *HttpClient) userStatus(ctx context.Context, handle string, from, count int) ([]Submission, apiResponse[json.RawMessage], error) {
	q := url.Values{}
	q.Set("handle", handle)
	q.Set("from", strconv.Itoa(from))
	q.Set("count", strconv.Itoa(count))
	endpoint := c.baseURL() + kUserStatusPath + "?" + q.Encode()

	req, err := c.newRequest(ctx, endpoint, kContentTypeApplicationJSON)
	if err != nil {
		return nil, apiResponse[json.RawMessage]{}, retry.Permanent(err)
	}

	resp, err := c.Http.Do(req)
	if err != nil {
		return nil, apiResponse[json.RawMessage]{}, fmt.Errorf("codeforces api request failed: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get(kHeaderContentType)
	if strings.Contains(strings.ToLower(contentType), kContentTypeTextHTML) {
		// Maintenance pages and anti-bot challenges come back as HTML.
		return nil, apiResponse[json.RawMessage]{}, fmt.Errorf(
			"codeforces api: unexpected html response (status %d)", resp.StatusCode)
	}

	// Failed calls (unknown handle, rate limit) carry a JSON body with a non-2xx
	// status, so decode first and only fall back to the HTTP status when that fails.
	body, err := io.ReadAll(io.LimitReader(resp.Body, kMaxPageBytes))
	if err != nil {
		return nil, apiResponse[json.RawMessage]{}, fmt.Errorf("read codeforces api response: %w", err)
	}

	var envelope apiResponse[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Status == "" {
		if resp.StatusCode != http.StatusOK {
			return nil, apiResponse[json.RawMessage]{}, fmt.Errorf("codeforces api: status %d: %s",
				resp.StatusCode, snippet(body, resp.Status))
		}
		if err == nil {
			err = errors.New("missing status field")
		}
		return nil, apiResponse[json.RawMessage]{}, fmt.Errorf("decode codeforces api response: %w", err)
	}
	if envelope.Status != kStatusOK {
		return nil, envelope, nil
	}

	var subs []Submission
	if len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, &subs); err != nil {
			return nil, apiResponse[json.RawMessage]{}, fmt.Errorf("decode codeforces api result: %w", err)
		}
	}
	return subs, envelope, nil
}

func (c *HttpClient) newRequest(ctx context.Context, endpoint string, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(kHeaderAccept, accept)
	req.Header.Set(kHeaderConnection, "close")
	req.Close = true
	if c.UserAgent != "" {
		req.Header.Set(kHeaderUserAgent, c.UserAgent)
	}
	return req, nil
}

func (c *HttpClient) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, c.Retries+1, func(ctx context.Context, attempt int) error {
		err := fn(ctx)
		if err != nil && attempt <= c.Retries && ctx.Err() == nil && !retry.IsPermanent(err) {
			c.Logger.DebugContext(ctx, "request failed, retrying",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		}
		return err
	})
}

func (c *HttpClient) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = kDefaultBaseURL
	}
	return base
}

func readSnippet(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, kMaxErrorBodyBytes))
	return snippet(b, resp.Status)
}

func snippet(b []byte, fallback string) string {
	if len(b) > kMaxErrorBodyBytes {
		b = b[:kMaxErrorBodyBytes]
	}
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		msg = fallback
	}
	return msg
}

func formatComment(comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ""
	}
	return ": " + comment
}
