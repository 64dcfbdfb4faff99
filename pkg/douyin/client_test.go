package douyin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "dydl/pkg/errors"
	"dydl/pkg/logger"
)

func newTestClient(serverURL string, signer Signer) *Client {
	c := NewClient(5*time.Second, "sessionid=test", "test-agent", signer, logger.NewTestLogger())
	c.SetBaseURL(serverURL)
	c.SetFallbackBaseURL(serverURL)
	return c
}

func TestFetchUserPosts(t *testing.T) {
	var gotCookie, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/aweme/v1/web/aweme/post/", r.URL.Path)
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "MS4wTest", r.URL.Query().Get("sec_user_id"))
		assert.Equal(t, "42", r.URL.Query().Get("max_cursor"))

		w.Write([]byte(`{"status_code":0,"aweme_list":[{"aweme_id":"7001"},{"aweme_id":"7002"}],"max_cursor":100,"has_more":1}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, nil)
	resp, err := c.FetchUserPosts(context.Background(), "MS4wTest", 42)
	require.NoError(t, err)

	assert.Len(t, resp.AwemeList, 2)
	assert.Equal(t, int64(100), resp.MaxCursor)
	assert.True(t, bool(resp.HasMore))
	assert.Equal(t, "sessionid=test", gotCookie)
	assert.Equal(t, "test-agent", gotUA)
}

func TestFetchUserPostsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":8,"status_msg":"need login"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, nil)
	_, err := c.FetchUserPosts(context.Background(), "MS4wTest", 0)
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeAPI, apiErr.Type)
	assert.Equal(t, 8, apiErr.Code)
}

func TestGetJSONStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   errs.ErrorType
	}{
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{http.StatusBadGateway, errs.ErrorTypeServerError},
		{http.StatusForbidden, errs.ErrorTypeAPI},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		c := newTestClient(server.URL, nil)
		var out map[string]interface{}
		err := c.GetJSON(context.Background(), server.URL+"/x", &out)
		require.Error(t, err)

		var apiErr *errs.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.want, apiErr.Type, "status %d", tt.status)
		server.Close()
	}
}

func TestSignURLAppendsToken(t *testing.T) {
	signer := SignerFunc(func(query, ua string) (string, error) {
		assert.Equal(t, "test-agent", ua)
		return "tok-123", nil
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-123", r.URL.Query().Get("X-Bogus"))
		w.Write([]byte(`{"status_code":0,"aweme_detail":{"aweme_id":"7001"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, signer)
	item, err := c.FetchDetail(context.Background(), "7001")
	require.NoError(t, err)
	assert.Equal(t, "7001", item.AwemeID)
}

func TestSigningFailureDegradesToUnsigned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("X-Bogus"))
		w.Write([]byte(`{"status_code":0,"aweme_detail":{"aweme_id":"7001"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, NopSigner{})
	item, err := c.FetchDetail(context.Background(), "7001")
	require.NoError(t, err)
	assert.Equal(t, "7001", item.AwemeID)
}

func TestFetchDetailFallsBackToItemInfo(t *testing.T) {
	fallbackHit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/aweme/v1/web/aweme/detail/":
			// Empty body is the API's way of refusing an unsigned call
			w.WriteHeader(http.StatusOK)
		case "/web/api/v2/aweme/iteminfo/":
			fallbackHit = true
			assert.Equal(t, "7009", r.URL.Query().Get("item_ids"))
			w.Write([]byte(`{"status_code":0,"item_list":[{"aweme_id":"7009","desc":"rescued"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, nil)
	item, err := c.FetchDetail(context.Background(), "7009")
	require.NoError(t, err)
	assert.True(t, fallbackHit)
	assert.Equal(t, "rescued", item.Desc)
}

func TestFetchDetailBothEndpointsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL, nil)
	_, err := c.FetchDetail(context.Background(), "7009")
	require.Error(t, err)
}

func TestGetMediaStripsReferer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Referer"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("binary"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, nil)
	resp, err := c.GetMedia(context.Background(), server.URL+"/video.mp4")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResolveShortURL(t *testing.T) {
	var target string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/short":
			http.Redirect(w, r, target, http.StatusFound)
		case "/video/7123456789012345678":
			w.Write([]byte("page"))
		}
	}))
	defer server.Close()
	target = server.URL + "/video/7123456789012345678"

	c := newTestClient(server.URL, nil)
	resolved := c.ResolveShortURL(context.Background(), server.URL+"/short")
	assert.Equal(t, target, resolved)
}

func TestResolveShortURLDegradesOnFailure(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", nil)
	in := "http://127.0.0.1:1/short"
	assert.Equal(t, in, c.ResolveShortURL(context.Background(), in))
}
