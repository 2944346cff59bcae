// Package feed imports podcast episodes from an RSS/Atom feed into the
// episodes table, giving the apply workflow canonical records to target.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"podcast-studio/pkg/domain"
)

// EpisodeSaver persists imported episodes.
type EpisodeSaver interface {
	SaveEpisode(ctx context.Context, ep *domain.Episode) error
}

// Importer parses podcast feeds and saves their episodes.
type Importer struct {
	parser *gofeed.Parser
	saver  EpisodeSaver
}

// NewImporter creates an importer writing through the given saver.
func NewImporter(saver EpisodeSaver) *Importer {
	return &Importer{
		parser: gofeed.NewParser(),
		saver:  saver,
	}
}

// ImportURL fetches a podcast feed and upserts each item as an episode.
// Returns how many episodes were saved.
func (i *Importer) ImportURL(ctx context.Context, feedURL string) (int, error) {
	parsed, err := i.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return 0, fmt.Errorf("parse podcast feed: %w", err)
	}
	if parsed == nil || len(parsed.Items) == 0 {
		return 0, fmt.Errorf("feed contains no items")
	}

	saved := 0
	for _, item := range parsed.Items {
		ep := episodeFromItem(item)
		if ep == nil {
			continue
		}
		if err := i.saver.SaveEpisode(ctx, ep); err != nil {
			return saved, fmt.Errorf("import %q: %w", ep.Title, err)
		}
		saved++
	}

	if saved == 0 {
		return 0, fmt.Errorf("no usable episodes found in feed")
	}
	return saved, nil
}

// episodeFromItem maps one feed item to an Episode, or nil when the item has
// no title.
func episodeFromItem(item *gofeed.Item) *domain.Episode {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	ep := &domain.Episode{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(item.Description),
	}

	// Prefer the audio enclosure; fall back to the item link so an episode
	// without one still imports.
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "audio/") && enc.URL != "" {
			ep.AudioURL = enc.URL
			break
		}
	}
	if ep.AudioURL == "" {
		ep.AudioURL = item.Link
	}

	if item.ITunesExt != nil && item.ITunesExt.Summary != "" {
		ep.Summary = strings.TrimSpace(item.ITunesExt.Summary)
	}
	if item.Content != "" {
		ep.Content = strings.TrimSpace(item.Content)
	}
	if item.PublishedParsed != nil {
		ep.PublishedAt = *item.PublishedParsed
	}

	return ep
}
