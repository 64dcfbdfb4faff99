package douyin

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the web frontend and API host
	BaseURL = "https://www.douyin.com"

	// FallbackBaseURL hosts the legacy unsigned detail endpoint
	FallbackBaseURL = "https://www.iesdouyin.com"

	// DefaultPageSize is the count requested per enumeration page
	DefaultPageSize = 20
)

// baseParams is the query parameter block every web API endpoint expects.
// Missing or inconsistent values here trip the platform's bot checks.
func baseParams() url.Values {
	v := url.Values{}
	v.Set("device_platform", "webapp")
	v.Set("aid", "6383")
	v.Set("channel", "channel_pc_web")
	v.Set("pc_client_type", "1")
	v.Set("version_code", "170400")
	v.Set("version_name", "17.4.0")
	v.Set("cookie_enabled", "true")
	v.Set("screen_width", "1920")
	v.Set("screen_height", "1080")
	v.Set("browser_language", "zh-CN")
	v.Set("browser_platform", "Win32")
	v.Set("browser_name", "Chrome")
	v.Set("browser_version", "122.0.0.0")
	v.Set("browser_online", "true")
	v.Set("engine_name", "Blink")
	v.Set("engine_version", "122.0.0.0")
	v.Set("os_name", "Windows")
	v.Set("os_version", "10")
	v.Set("platform", "PC")
	return v
}

// DetailURL builds the single-item detail endpoint
func DetailURL(base, awemeID string) string {
	v := baseParams()
	v.Set("aweme_id", awemeID)
	return fmt.Sprintf("%s/aweme/v1/web/aweme/detail/?%s", base, v.Encode())
}

// UserPostURL builds a page of a user's published posts
func UserPostURL(base, secUID string, maxCursor int64, count int) string {
	v := baseParams()
	v.Set("sec_user_id", secUID)
	v.Set("max_cursor", strconv.FormatInt(maxCursor, 10))
	v.Set("count", strconv.Itoa(count))
	return fmt.Sprintf("%s/aweme/v1/web/aweme/post/?%s", base, v.Encode())
}

// UserFavoriteURL builds a page of a user's liked posts
func UserFavoriteURL(base, secUID string, maxCursor int64, count int) string {
	v := baseParams()
	v.Set("sec_user_id", secUID)
	v.Set("max_cursor", strconv.FormatInt(maxCursor, 10))
	v.Set("count", strconv.Itoa(count))
	return fmt.Sprintf("%s/aweme/v1/web/aweme/favorite/?%s", base, v.Encode())
}

// UserMixListURL builds a page of the collections a user owns
func UserMixListURL(base, secUID string, cursor int64, count int) string {
	v := baseParams()
	v.Set("sec_user_id", secUID)
	v.Set("cursor", strconv.FormatInt(cursor, 10))
	v.Set("count", strconv.Itoa(count))
	return fmt.Sprintf("%s/aweme/v1/web/mix/list/?%s", base, v.Encode())
}

// MixItemsURL builds a page of one collection's items
func MixItemsURL(base, mixID string, cursor int64, count int) string {
	v := baseParams()
	v.Set("mix_id", mixID)
	v.Set("cursor", strconv.FormatInt(cursor, 10))
	v.Set("count", strconv.Itoa(count))
	return fmt.Sprintf("%s/aweme/v1/web/mix/aweme/?%s", base, v.Encode())
}

// MusicItemsURL builds a page of items that use a piece of music
func MusicItemsURL(base, musicID string, cursor int64, count int) string {
	v := baseParams()
	v.Set("music_id", musicID)
	v.Set("cursor", strconv.FormatInt(cursor, 10))
	v.Set("count", strconv.Itoa(count))
	return fmt.Sprintf("%s/aweme/v1/web/music/aweme/?%s", base, v.Encode())
}

// ItemInfoURL builds the legacy unsigned detail endpoint used when the
// signed web detail call fails
func ItemInfoURL(base, awemeID string) string {
	v := url.Values{}
	v.Set("item_ids", awemeID)
	return fmt.Sprintf("%s/web/api/v2/aweme/iteminfo/?%s", base, v.Encode())
}
