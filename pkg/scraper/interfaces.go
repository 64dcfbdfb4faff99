package scraper

import (
	"context"
	"net/http"

	"dydl/pkg/douyin"
)

// Client is the platform capability the orchestrator needs. *douyin.Client
// satisfies it; tests substitute their own.
type Client interface {
	ResolveShortURL(ctx context.Context, url string) string
	FetchDetail(ctx context.Context, awemeID string) (*douyin.Item, error)
	FetchUserPosts(ctx context.Context, secUID string, maxCursor int64) (*douyin.PostListResponse, error)
	FetchUserFavorites(ctx context.Context, secUID string, maxCursor int64) (*douyin.PostListResponse, error)
	FetchUserMixes(ctx context.Context, secUID string, cursor int64) (*douyin.MixListResponse, error)
	FetchMixItems(ctx context.Context, mixID string, cursor int64) (*douyin.MixItemsResponse, error)
	FetchMusicItems(ctx context.Context, musicID string, cursor int64) (*douyin.MusicItemsResponse, error)
	GetMedia(ctx context.Context, url string) (*http.Response, error)
}
