package douyin

import (
	"net/url"
	"regexp"
	"strings"

	errs "dydl/pkg/errors"
)

// ContentType classifies what an input link points at
type ContentType string

const (
	ContentUser    ContentType = "user"
	ContentVideo   ContentType = "video"
	ContentNote    ContentType = "note"
	ContentMix     ContentType = "mix"
	ContentMusic   ContentType = "music"
	ContentLive    ContentType = "live"
	ContentUnknown ContentType = "unknown"
)

// ContentReference is a fully classified input link
type ContentReference struct {
	RawURL      string
	ResolvedURL string
	Type        ContentType
	ID          string
}

// IsShortURL reports whether the link is a share short-link that must be
// resolved before classification
func IsShortURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), "v.douyin.com")
}

// DetectContentType classifies a resolved link. The user check runs before
// the item checks: a profile URL can contain a modal_id for an open item,
// and the profile wins.
func DetectContentType(raw string) ContentType {
	u, err := url.Parse(raw)
	if err != nil {
		return ContentUnknown
	}
	host := strings.ToLower(u.Hostname())
	path := u.Path
	query := u.RawQuery

	switch {
	case host == "live.douyin.com" || strings.HasPrefix(path, "/live/"):
		return ContentLive
	case strings.Contains(path, "/user/"):
		return ContentUser
	case strings.Contains(path, "/video/"):
		return ContentVideo
	case strings.Contains(path, "/note/"):
		return ContentNote
	case strings.Contains(query, "modal_id="):
		return ContentVideo
	case strings.Contains(path, "/collection/") || strings.Contains(path, "/mix/detail/"):
		return ContentMix
	case strings.Contains(path, "/music/"):
		return ContentMusic
	default:
		return ContentUnknown
	}
}

var (
	userIDPattern = regexp.MustCompile(`/user/([A-Za-z0-9_.\-]+)`)

	// itemIDPatterns are tried in order; the first match wins
	itemIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/video/(\d+)`),
		regexp.MustCompile(`/note/(\d+)`),
		regexp.MustCompile(`modal_id=(\d+)`),
		regexp.MustCompile(`aweme_id=(\d+)`),
		regexp.MustCompile(`item_ids=(\d+)`),
	}

	mixIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/collection/(\d+)`),
		regexp.MustCompile(`/mix/detail/(\d+)`),
	}

	musicIDPattern = regexp.MustCompile(`/music/(\d+)`)

	// bareIDPattern is the last resort for item links: any 15 to 20 digit
	// run in the URL
	bareIDPattern = regexp.MustCompile(`(\d{15,20})`)
)

// ExtractID pulls the identifier matching the content type out of a link
func ExtractID(raw string, ct ContentType) (string, error) {
	switch ct {
	case ContentUser:
		if m := userIDPattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	case ContentVideo, ContentNote:
		for _, p := range itemIDPatterns {
			if m := p.FindStringSubmatch(raw); m != nil {
				return m[1], nil
			}
		}
		if m := bareIDPattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	case ContentMix:
		for _, p := range mixIDPatterns {
			if m := p.FindStringSubmatch(raw); m != nil {
				return m[1], nil
			}
		}
	case ContentMusic:
		if m := musicIDPattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}
	return "", errs.Newf(errs.ErrorTypeClassification, "no %s id found in %s", ct, raw)
}

// Classify resolves a link into a ContentReference. resolved is the link
// after short-link resolution (equal to raw when no resolution happened).
func Classify(raw, resolved string) (*ContentReference, error) {
	ct := DetectContentType(resolved)
	if ct == ContentUnknown {
		return nil, errs.Newf(errs.ErrorTypeClassification, "unrecognized link: %s", resolved)
	}
	if ct == ContentLive {
		return nil, errs.Newf(errs.ErrorTypeClassification, "live links are not supported: %s", resolved)
	}

	id, err := ExtractID(resolved, ct)
	if err != nil {
		return nil, err
	}

	return &ContentReference{
		RawURL:      raw,
		ResolvedURL: resolved,
		Type:        ct,
		ID:          id,
	}, nil
}
