package feed

import (
	"bytes"
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// maxArticlesPerPoll caps how many items of a single feed make it into the
// snapshot. Large feeds publish hundreds of historical entries; the snapshot
// only tracks the current head.
const maxArticlesPerPoll = 25

// Parser fetches one feed URL and normalizes its content into the canonical
// article shape. It holds no per-feed state and is safe for concurrent use.
type Parser struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

func NewParser(client *http.Client, userAgent string, timeout time.Duration) *Parser {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Parser{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Parse fetches and normalizes a single feed. All failures are reported as
// result values; the error classification decides whether the caller should
// deactivate the feed.
func (p *Parser) Parse(ctx context.Context, feedURL string, hints FetchHints) Result {
	fetched, err := p.fetch(ctx, feedURL, hints)
	if err != nil {
		status := 0
		if fetched != nil && fetched.status != 0 {
			status = fetched.status
		}
		if status == 0 {
			status = deriveStatus(err)
		}
		slog.Warn("Feed fetch failed", "url", feedURL, "status", status, "error", err)
		return Result{
			Success:          false,
			Error:            err.Error(),
			Status:           status,
			ShouldDeactivate: ShouldDeactivate(status, err.Error()),
		}
	}

	if fetched.notModified {
		return Result{
			Success:      true,
			NotModified:  true,
			Status:       http.StatusNotModified,
			ETag:         cmp.Or(fetched.etag, hints.ETag),
			LastModified: cmp.Or(fetched.lastModified, hints.LastModified),
		}
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(fetched.body))
	if err != nil {
		// A misbehaving server may recover, so parse failures stay transient.
		slog.Warn("Feed parse failed", "url", feedURL, "error", err)
		return Result{
			Success: false,
			Error:   "failed to parse feed: " + err.Error(),
			Status:  fetched.status,
		}
	}

	now := time.Now().UTC()
	articles := make([]Article, 0, min(len(parsed.Items), maxArticlesPerPoll))
	for _, item := range parsed.Items {
		if len(articles) >= maxArticlesPerPoll {
			break
		}
		if article := p.normalizeItem(item, now); article != nil {
			articles = append(articles, *article)
		}
	}

	feedImage, feedThumbnail := extractFeedImages(parsed)

	return Result{
		Success:         true,
		FeedTitle:       CleanText(parsed.Title),
		FeedDescription: CleanText(parsed.Description),
		FeedLink:        CleanText(cmp.Or(parsed.Link, feedURL)),
		FeedImage:       feedImage,
		FeedThumbnail:   feedThumbnail,
		Articles:        articles,
		ETag:            fetched.etag,
		LastModified:    fetched.lastModified,
		Status:          fetched.status,
	}
}

// normalizeItem maps one gofeed item onto the canonical Article. Returns nil
// when the item lacks a usable title or link; such items are silently
// excluded from the snapshot.
func (p *Parser) normalizeItem(item *gofeed.Item, now time.Time) *Article {
	title := CleanText(item.Title)
	link := CleanText(cmp.Or(item.Link, item.GUID))
	if title == "" || link == "" {
		return nil
	}

	description := CleanText(cmp.Or(item.Description, item.Content))
	content := CleanText(cmp.Or(item.Content, item.Description))
	contentForMetrics := strings.TrimSpace(description + " " + content)

	media := extractMedia(item)
	tags := p.extractTags(item, title, description)
	author := p.extractAuthor(item)

	return &Article{
		Title:            title,
		Description:      description,
		Summary:          Summary(description),
		Link:             link,
		Author:           author,
		PubDate:          cmp.Or(item.Published, item.Updated),
		GUID:             CleanText(cmp.Or(item.GUID, item.Link)),
		Category:         strings.Join(tags, ", "),
		Tags:             tags,
		MediaThumbURL:    media.Thumbnail,
		MediaURL:         media.MainImage,
		MediaType:        media.Type,
		MediaDescription: media.Description,
		ContentEncoded:   content,
		WordCount:        WordCount(contentForMetrics),
		ReadingTime:      ReadingTime(contentForMetrics),
		ExtractedAt:      now,
		HasMedia:         media.Thumbnail != "" || media.MainImage != "",
		HasAuthor:        author != "",
		HasContent:       content != "",
		ContentLength:    len(contentForMetrics),
	}
}

// extractTags merges explicit categories, Dublin Core subjects and hashtags
// found in the title or description.
func (p *Parser) extractTags(item *gofeed.Item, title, description string) []string {
	var tags []string

	for _, category := range item.Categories {
		tags = append(tags, CleanText(category))
	}

	if item.DublinCoreExt != nil {
		for _, subject := range item.DublinCoreExt.Subject {
			tags = append(tags, CleanText(subject))
		}
	}

	tags = append(tags, ExtractHashtags(title, description)...)

	return dedupeStrings(tags)
}

// extractAuthor resolves the author in priority order: native author
// elements, dc:creator, then itunes:author.
func (p *Parser) extractAuthor(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if name := CleanText(cmp.Or(author.Name, author.Email)); name != "" {
			return name
		}
	}

	if item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			if name := CleanText(creator); name != "" {
				return name
			}
		}
	}

	if item.ITunesExt != nil {
		return CleanText(item.ITunesExt.Author)
	}

	return ""
}
