package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"dydl/pkg/douyin"
)

// Target is one file to acquire: a preferred URL, ordered fallback URLs,
// and the destination path.
type Target struct {
	Primary   string
	Fallbacks []string
	Path      string
}

// Candidates returns the primary followed by the fallbacks
func (t Target) Candidates() []string {
	return append([]string{t.Primary}, t.Fallbacks...)
}

// Options selects which optional artifacts get a target
type Options struct {
	Audio bool
	Cover bool
}

// qualityKeywords mark higher-quality variants in CDN URLs, in priority order
var qualityKeywords = []string{"1080", "origin", "high"}

// NoWatermarkURL rewrites a play URL to its watermark-free variant. These
// substitutions track observed CDN URL shapes and may rot; the untouched
// URL always rides along as a fallback.
func NoWatermarkURL(u string) string {
	u = strings.ReplaceAll(u, "playwm", "play")
	u = strings.ReplaceAll(u, "720p", "1080p")
	return u
}

// BestQualityURL picks the most promising candidate from a URL list
func BestQualityURL(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	for _, kw := range qualityKeywords {
		for _, u := range urls {
			if strings.Contains(u, kw) {
				return u
			}
		}
	}
	return urls[0]
}

// Targets resolves an item into the files to acquire under dir. folder is
// the item's folder name, used as the filename stem.
func Targets(item *douyin.Item, dir, folder string, opts Options) []Target {
	var targets []Target

	switch item.Kind() {
	case douyin.KindVideo:
		if t, ok := videoTarget(item, dir, folder); ok {
			targets = append(targets, t)
		}
		if opts.Cover {
			if t, ok := addrTarget(item.Video.Cover, filepath.Join(dir, folder+"_cover.jpg")); ok {
				targets = append(targets, t)
			}
		}
	case douyin.KindImages:
		for i, img := range item.Images {
			path := filepath.Join(dir, fmt.Sprintf("image_%02d.jpg", i+1))
			if t, ok := addrTarget(img, path); ok {
				targets = append(targets, t)
			}
		}
	}

	if opts.Audio {
		if t, ok := addrTarget(item.Music.PlayURL, filepath.Join(dir, folder+"_music.mp3")); ok {
			targets = append(targets, t)
		}
	}

	return targets
}

// videoTarget builds the video file target. H264 addresses are preferred
// for compatibility; the watermark-free rewrite leads and every unmodified
// address follows as a fallback.
func videoTarget(item *douyin.Item, dir, folder string) (Target, bool) {
	source := item.Video.PlayAddrH264.URLList
	if len(source) == 0 {
		source = item.Video.PlayAddr.URLList
	}
	if len(source) == 0 {
		source = item.Video.DownloadAddr.URLList
	}
	if len(source) == 0 {
		return Target{}, false
	}

	primary := NoWatermarkURL(BestQualityURL(source))

	var fallbacks []string
	seen := map[string]bool{primary: true}
	for _, list := range [][]string{source, item.Video.PlayAddr.URLList, item.Video.DownloadAddr.URLList} {
		for _, u := range list {
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			fallbacks = append(fallbacks, u)
		}
	}

	return Target{
		Primary:   primary,
		Fallbacks: fallbacks,
		Path:      filepath.Join(dir, folder+".mp4"),
	}, true
}

// addrTarget builds a target from a generic multi-candidate address
func addrTarget(addr douyin.Addr, path string) (Target, bool) {
	if len(addr.URLList) == 0 {
		return Target{}, false
	}

	primary := BestQualityURL(addr.URLList)

	var fallbacks []string
	seen := map[string]bool{primary: true}
	for _, u := range addr.URLList {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		fallbacks = append(fallbacks, u)
	}

	return Target{Primary: primary, Fallbacks: fallbacks, Path: path}, true
}
