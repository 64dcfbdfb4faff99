package douyin

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Addr is a multi-candidate resource address. The platform hands out
// several CDN URLs for the same asset; order is the platform's preference.
type Addr struct {
	URI     string   `json:"uri"`
	URLList []string `json:"url_list"`
}

// First returns the first candidate URL, or empty
func (a Addr) First() string {
	if len(a.URLList) == 0 {
		return ""
	}
	return a.URLList[0]
}

// Video holds the playable and downloadable addresses of a video item
type Video struct {
	PlayAddr     Addr `json:"play_addr"`
	PlayAddrH264 Addr `json:"play_addr_h264"`
	DownloadAddr Addr `json:"download_addr"`
	Cover        Addr `json:"cover"`
	Duration     int  `json:"duration"`
}

// Author identifies the publishing account
type Author struct {
	UID      string `json:"uid"`
	SecUID   string `json:"sec_uid"`
	Nickname string `json:"nickname"`
}

// Music is the audio track attached to an item
type Music struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	PlayURL Addr   `json:"play_url"`
}

// MediaKind distinguishes what a feed item carries
type MediaKind int

const (
	KindVideo MediaKind = iota
	KindImages
)

func (k MediaKind) String() string {
	if k == KindImages {
		return "images"
	}
	return "video"
}

// Item is one piece of published content. Raw preserves the exact bytes
// the platform returned, for the metadata sidecar and dedup snapshots.
type Item struct {
	AwemeID    string     `json:"aweme_id"`
	Desc       string     `json:"desc"`
	CreateTime CreateTime `json:"create_time"`
	Author     Author     `json:"author"`
	Video      Video      `json:"video"`
	Images     []Addr     `json:"images"`
	Music      Music      `json:"music"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the item and keeps a copy of the raw bytes
func (i *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*i = Item(a)
	i.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Kind reports whether the item is a video or an image set. An item with a
// non-empty images array is an image post even if a video stub is present.
func (i *Item) Kind() MediaKind {
	if len(i.Images) > 0 {
		return KindImages
	}
	return KindVideo
}

// createTimeLayouts are the textual forms create_time has been seen in
var createTimeLayouts = []string{
	"2006-01-02 15.04.05",
	"2006-01-02_15-04-05",
	"2006-01-02 15:04:05",
}

// CreateTime is a publish timestamp that arrives either as epoch seconds
// or as one of a few textual layouts. Unparseable values stay zero.
type CreateTime struct {
	time.Time
}

func (ct *CreateTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] != '"' {
		if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			ct.Time = time.Unix(n, 0)
			return nil
		}
		if f, err := strconv.ParseFloat(string(data), 64); err == nil {
			ct.Time = time.Unix(int64(f), 0)
			return nil
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		ct.Time = time.Unix(n, 0)
		return nil
	}
	for _, layout := range createTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ct.Time = t
			return nil
		}
	}
	return nil
}

func (ct CreateTime) MarshalJSON() ([]byte, error) {
	if ct.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(ct.Unix(), 10)), nil
}

// Bool tolerates the platform's mixed boolean encodings: true/false, 0/1,
// and the same as strings.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1", `"true"`, `"1"`:
		*b = true
	case "false", "0", "null", `"false"`, `"0"`, `""`:
		*b = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = n != 0
	}
	return nil
}

// DetailResponse wraps a single-item detail fetch
type DetailResponse struct {
	StatusCode  int    `json:"status_code"`
	StatusMsg   string `json:"status_msg"`
	AwemeDetail *Item  `json:"aweme_detail"`
}

// PostListResponse is a page of a user's post or favorite feed
type PostListResponse struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	AwemeList  []Item `json:"aweme_list"`
	MaxCursor  int64  `json:"max_cursor"`
	HasMore    Bool   `json:"has_more"`
}

// MixItemsResponse is a page of a mix's (collection's) items
type MixItemsResponse struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	AwemeList  []Item `json:"aweme_list"`
	Cursor     int64  `json:"cursor"`
	HasMore    Bool   `json:"has_more"`
}

// MixInfo identifies one collection owned by a user
type MixInfo struct {
	MixID   string `json:"mix_id"`
	MixName string `json:"mix_name"`
}

// MixListResponse is a page of a user's collections
type MixListResponse struct {
	StatusCode int       `json:"status_code"`
	StatusMsg  string    `json:"status_msg"`
	MixInfos   []MixInfo `json:"mix_infos"`
	Cursor     int64     `json:"cursor"`
	HasMore    Bool      `json:"has_more"`
}

// MusicItemsResponse is a page of items using a piece of music
type MusicItemsResponse struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	AwemeList  []Item `json:"aweme_list"`
	Cursor     int64  `json:"cursor"`
	HasMore    Bool   `json:"has_more"`
}

// ItemInfoResponse is the legacy fallback detail endpoint's shape
type ItemInfoResponse struct {
	StatusCode int    `json:"status_code"`
	ItemList   []Item `json:"item_list"`
}
