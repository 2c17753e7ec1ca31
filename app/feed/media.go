package feed

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// trackingPatterns mark image URLs that are almost certainly tracking pixels
// or layout spacers rather than article media.
var trackingPatterns = []string{"1x1", "spacer", "pixel", "blank"}

// extractMedia resolves the media cascade for a single item: Media RSS
// elements first, then enclosures, then podcast artwork, then the first
// usable <img> inside the encoded content or description. The first match
// wins independently for thumbnail and main image.
func extractMedia(item *gofeed.Item) mediaInfo {
	var m mediaInfo

	if media, ok := item.Extensions["media"]; ok {
		applyMediaExtensions(&m, media["thumbnail"], true)
		applyMediaExtensions(&m, media["content"], false)
		for _, group := range media["group"] {
			applyMediaExtensions(&m, group.Children["thumbnail"], true)
			applyMediaExtensions(&m, group.Children["content"], false)
		}
	}

	if m.MainImage == "" || m.Thumbnail == "" {
		for _, enc := range item.Enclosures {
			if enc == nil || strings.TrimSpace(enc.URL) == "" {
				continue
			}
			if m.MainImage == "" {
				m.MainImage = strings.TrimSpace(enc.URL)
			}
			if m.Thumbnail == "" {
				m.Thumbnail = strings.TrimSpace(enc.URL)
			}
			if m.Type == "" {
				m.Type = enc.Type
			}
			break
		}
	}

	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		if m.Thumbnail == "" {
			m.Thumbnail = item.ITunesExt.Image
		}
		if m.MainImage == "" {
			m.MainImage = item.ITunesExt.Image
		}
	}

	if m.MainImage == "" || m.Thumbnail == "" {
		if img := firstContentImage(item.Content, item.Description); img != "" {
			if m.MainImage == "" {
				m.MainImage = img
			}
			if m.Thumbnail == "" {
				m.Thumbnail = img
			}
		}
	}

	if m.Thumbnail == "" && m.MainImage != "" {
		m.Thumbnail = m.MainImage
	}
	if m.Type == "" {
		m.Type = "image"
	}

	return m
}

// applyMediaExtensions walks Media RSS extension elements. gofeed models
// single elements and lists uniformly as a slice, so an empty slice means
// absent and iteration covers both single and list forms.
func applyMediaExtensions(m *mediaInfo, elements []ext.Extension, preferThumbnail bool) {
	for _, el := range elements {
		u := mediaAttr(el, "url", "href")
		if u != "" {
			if preferThumbnail {
				if m.Thumbnail == "" {
					m.Thumbnail = u
				}
			} else if m.MainImage == "" {
				m.MainImage = u
			}
		}
		if t := mediaAttr(el, "type", "medium"); t != "" && m.Type == "" {
			m.Type = t
		}
		if d := mediaChildValue(el, "description", "title"); d != "" && m.Description == "" {
			m.Description = CleanText(d)
		}
	}
}

func mediaAttr(el ext.Extension, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(el.Attrs[key]); v != "" {
			return v
		}
	}
	return ""
}

func mediaChildValue(el ext.Extension, names ...string) string {
	for _, name := range names {
		for _, child := range el.Children[name] {
			if v := strings.TrimSpace(child.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// extractFeedImages resolves the channel-level cascade: explicit image
// element, then podcast artwork, then the first usable image in the feed
// description.
func extractFeedImages(f *gofeed.Feed) (main, thumbnail string) {
	if f.Image != nil && f.Image.URL != "" {
		return f.Image.URL, f.Image.URL
	}
	if f.ITunesExt != nil && f.ITunesExt.Image != "" {
		return f.ITunesExt.Image, f.ITunesExt.Image
	}
	if img := firstContentImage(f.Description); img != "" {
		return img, img
	}
	return "", ""
}

// firstContentImage returns the first <img> source found in the given HTML
// fragments that survives tracking-pixel and relative-URL filtering.
func firstContentImage(fragments ...string) string {
	for _, fragment := range fragments {
		if !strings.Contains(fragment, "<img") {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
		if err != nil {
			continue
		}
		var found string
		doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			src, _ := sel.Attr("src")
			if normalized := normalizeImageURL(src); normalized != "" {
				found = normalized
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// normalizeImageURL validates an image URL for snapshot use: tracking-pixel
// patterns are rejected, protocol-relative URLs are upgraded to https, and
// anything that does not parse as an absolute URL is dropped.
func normalizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	lowered := strings.ToLower(raw)
	for _, pattern := range trackingPatterns {
		if strings.Contains(lowered, pattern) {
			return ""
		}
	}

	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return ""
	}

	return raw
}
