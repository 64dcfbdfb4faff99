package douyin

import "testing"

func TestIsShortURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://v.douyin.com/iYxNKSB/", true},
		{"https://V.DOUYIN.COM/abc/", true},
		{"https://www.douyin.com/video/7123456789012345678", false},
		{"not a url at all ::", false},
	}

	for _, tt := range tests {
		if got := IsShortURL(tt.url); got != tt.want {
			t.Errorf("IsShortURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want ContentType
	}{
		{"video", "https://www.douyin.com/video/7123456789012345678", ContentVideo},
		{"note", "https://www.douyin.com/note/7123456789012345678", ContentNote},
		{"user", "https://www.douyin.com/user/MS4wLjABAAAA12345", ContentUser},
		{"user wins over embedded item id", "https://www.douyin.com/user/MS4wLjABAAAA?modal_id=7123456789012345678", ContentUser},
		{"modal id alone", "https://www.douyin.com/discover?modal_id=7123456789012345678", ContentVideo},
		{"collection", "https://www.douyin.com/collection/7123456789012345678", ContentMix},
		{"mix detail", "https://www.douyin.com/mix/detail/7123456789012345678", ContentMix},
		{"music", "https://www.douyin.com/music/7123456789012345678", ContentMusic},
		{"live host", "https://live.douyin.com/123456", ContentLive},
		{"unknown", "https://www.douyin.com/discover", ContentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectContentType(tt.url); got != tt.want {
				t.Errorf("DetectContentType(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ct   ContentType
		want string
	}{
		{"video path", "https://www.douyin.com/video/7123456789012345678", ContentVideo, "7123456789012345678"},
		{"note path", "https://www.douyin.com/note/7123456789012345678", ContentNote, "7123456789012345678"},
		{"modal id", "https://www.douyin.com/discover?modal_id=7123456789012345678", ContentVideo, "7123456789012345678"},
		{"aweme id param", "https://example.com/x?aweme_id=7123456789012345678", ContentVideo, "7123456789012345678"},
		{"bare digits", "https://example.com/share/7123456789012345678/", ContentVideo, "7123456789012345678"},
		{"user sec uid", "https://www.douyin.com/user/MS4wLjABAAAA_x-y.z", ContentUser, "MS4wLjABAAAA_x-y.z"},
		{"collection", "https://www.douyin.com/collection/7234567890123456789", ContentMix, "7234567890123456789"},
		{"music", "https://www.douyin.com/music/7345678901234567890", ContentMusic, "7345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractID(tt.url, tt.ct)
			if err != nil {
				t.Fatalf("ExtractID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractIDFailure(t *testing.T) {
	if _, err := ExtractID("https://www.douyin.com/discover", ContentVideo); err == nil {
		t.Error("expected error for URL without an item id")
	}
}

func TestClassify(t *testing.T) {
	ref, err := Classify(
		"https://v.douyin.com/abc/",
		"https://www.douyin.com/video/7123456789012345678",
	)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if ref.Type != ContentVideo {
		t.Errorf("Type = %v, want video", ref.Type)
	}
	if ref.ID != "7123456789012345678" {
		t.Errorf("ID = %q", ref.ID)
	}
	if ref.RawURL != "https://v.douyin.com/abc/" {
		t.Errorf("RawURL = %q", ref.RawURL)
	}
}

func TestClassifyUserPrecedence(t *testing.T) {
	// A user profile URL with a 16+ digit modal id must classify as user
	ref, err := Classify(
		"https://www.douyin.com/user/MS4wLjABAAAAxyz?modal_id=7123456789012345678",
		"https://www.douyin.com/user/MS4wLjABAAAAxyz?modal_id=7123456789012345678",
	)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if ref.Type != ContentUser {
		t.Errorf("Type = %v, want user", ref.Type)
	}
	if ref.ID != "MS4wLjABAAAAxyz" {
		t.Errorf("ID = %q, want the sec uid", ref.ID)
	}
}

func TestClassifyRejectsLiveAndUnknown(t *testing.T) {
	if _, err := Classify("x", "https://live.douyin.com/123"); err == nil {
		t.Error("expected error for live link")
	}
	if _, err := Classify("x", "https://www.douyin.com/discover"); err == nil {
		t.Error("expected error for unknown link")
	}
}
