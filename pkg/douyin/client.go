package douyin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "dydl/pkg/errors"
	"dydl/pkg/logger"
)

// Client talks to the platform's web API. It owns the full header set;
// nothing else in the codebase mutates request headers.
type Client struct {
	httpClient      *http.Client
	headers         map[string]string
	baseURL         string
	fallbackBaseURL string
	signer          Signer
	logger          logger.Logger
}

// NewClient creates a platform client. An empty cookie is allowed; only
// some endpoints require one. A nil signer degrades to unsigned requests.
func NewClient(timeout time.Duration, cookie, userAgent string, signer Signer, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if signer == nil {
		signer = NopSigner{}
	}

	headers := map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		"Referer":         BaseURL + "/",
	}
	if cookie != "" {
		headers["Cookie"] = cookie
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers:         headers,
		baseURL:         BaseURL,
		fallbackBaseURL: FallbackBaseURL,
		signer:          signer,
		logger:          log,
	}
}

// SetBaseURL overrides the API host (used by tests)
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// SetFallbackBaseURL overrides the legacy detail host (used by tests)
func (c *Client) SetFallbackBaseURL(base string) {
	c.fallbackBaseURL = base
}

// signURL appends the X-Bogus token to an API URL. When signing fails the
// URL is returned untouched and the request goes out unsigned.
func (c *Client) signURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	token, err := c.signer.Sign(u.RawQuery, c.headers["User-Agent"])
	if err != nil {
		c.logger.DebugWithFields("signing unavailable, sending unsigned", map[string]interface{}{
			"error": err.Error(),
		})
		return rawURL
	}

	u.RawQuery = u.RawQuery + "&X-Bogus=" + url.QueryEscape(token)
	return u.String()
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Newf(errs.ErrorTypeNetwork, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to create request: %v", err)
	}
	return c.doRequest(req)
}

// GetMedia performs a GET request for a media file. The Referer header is
// stripped: the CDN rejects cross-referer fetches.
func (c *Client) GetMedia(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeUnknown, "failed to create request: %v", err)
	}

	for key, value := range c.headers {
		if key == "Referer" {
			continue
		}
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeNetwork, "network error: %v", err)
	}
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, rawURL string, target interface{}) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Newf(errs.ErrorTypeNetwork, "failed to read response body: %v", err)
	}

	if len(body) == 0 {
		// Empty 200 bodies are how the API refuses unsigned requests
		return errs.New(errs.ErrorTypeAPI, "empty response body")
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          rawURL,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errs.Newf(errs.ErrorTypeParsing, "failed to parse JSON: %v", err)
	}

	return nil
}

// checkResponseStatus maps HTTP status codes to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &errs.Error{Type: errs.ErrorTypeNotFound, Message: "resource not found", Code: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &errs.Error{Type: errs.ErrorTypeServerError, Message: "server error", Code: resp.StatusCode}
	default:
		return &errs.Error{
			Type:    errs.ErrorTypeAPI,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// checkAPIStatus maps the platform's in-body status code to a typed error
func checkAPIStatus(statusCode int, statusMsg string) error {
	if statusCode == 0 {
		return nil
	}
	if statusMsg == "" {
		statusMsg = "request rejected"
	}
	return &errs.Error{Type: errs.ErrorTypeAPI, Message: statusMsg, Code: statusCode}
}

// ResolveShortURL follows a share short-link to its destination. On any
// failure the input is returned unchanged so classification can still try.
func (c *Client) ResolveShortURL(ctx context.Context, rawURL string) string {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		c.logger.WarnWithFields("short link resolution failed", map[string]interface{}{
			"url":   rawURL,
			"error": err.Error(),
		})
		return rawURL
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	final := resp.Request.URL.String()
	c.logger.DebugWithFields("short link resolved", map[string]interface{}{
		"url":      rawURL,
		"resolved": final,
	})
	return final
}

// FetchDetail fetches a single item. When the signed web endpoint fails it
// falls back to the legacy unsigned iteminfo endpoint.
func (c *Client) FetchDetail(ctx context.Context, awemeID string) (*Item, error) {
	var detail DetailResponse
	err := c.GetJSON(ctx, c.signURL(DetailURL(c.baseURL, awemeID)), &detail)
	if err == nil {
		if err = checkAPIStatus(detail.StatusCode, detail.StatusMsg); err == nil && detail.AwemeDetail != nil {
			return detail.AwemeDetail, nil
		}
		if err == nil {
			err = errs.New(errs.ErrorTypeAPI, "detail response carried no item")
		}
	}

	c.logger.WarnWithFields("detail fetch failed, trying fallback endpoint", map[string]interface{}{
		"aweme_id": awemeID,
		"error":    err.Error(),
	})

	var info ItemInfoResponse
	if ferr := c.GetJSON(ctx, ItemInfoURL(c.fallbackBaseURL, awemeID), &info); ferr != nil {
		return nil, err
	}
	if len(info.ItemList) == 0 {
		return nil, errs.Newf(errs.ErrorTypeNotFound, "item %s not found", awemeID)
	}
	return &info.ItemList[0], nil
}

// FetchUserPosts fetches one page of a user's published posts
func (c *Client) FetchUserPosts(ctx context.Context, secUID string, maxCursor int64) (*PostListResponse, error) {
	var resp PostListResponse
	u := c.signURL(UserPostURL(c.baseURL, secUID, maxCursor, DefaultPageSize))
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if err := checkAPIStatus(resp.StatusCode, resp.StatusMsg); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchUserFavorites fetches one page of a user's liked posts
func (c *Client) FetchUserFavorites(ctx context.Context, secUID string, maxCursor int64) (*PostListResponse, error) {
	var resp PostListResponse
	u := c.signURL(UserFavoriteURL(c.baseURL, secUID, maxCursor, DefaultPageSize))
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if err := checkAPIStatus(resp.StatusCode, resp.StatusMsg); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchUserMixes fetches one page of the collections a user owns
func (c *Client) FetchUserMixes(ctx context.Context, secUID string, cursor int64) (*MixListResponse, error) {
	var resp MixListResponse
	u := c.signURL(UserMixListURL(c.baseURL, secUID, cursor, DefaultPageSize))
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if err := checkAPIStatus(resp.StatusCode, resp.StatusMsg); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchMixItems fetches one page of a collection's items
func (c *Client) FetchMixItems(ctx context.Context, mixID string, cursor int64) (*MixItemsResponse, error) {
	var resp MixItemsResponse
	u := c.signURL(MixItemsURL(c.baseURL, mixID, cursor, DefaultPageSize))
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if err := checkAPIStatus(resp.StatusCode, resp.StatusMsg); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchMusicItems fetches one page of the items using a piece of music
func (c *Client) FetchMusicItems(ctx context.Context, musicID string, cursor int64) (*MusicItemsResponse, error) {
	var resp MusicItemsResponse
	u := c.signURL(MusicItemsURL(c.baseURL, musicID, cursor, DefaultPageSize))
	if err := c.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if err := checkAPIStatus(resp.StatusCode, resp.StatusMsg); err != nil {
		return nil, err
	}
	return &resp, nil
}
