package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"podcast-studio/pkg/domain"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Data Engineering Weekly</title>
    <item>
      <title>Scaling Feature Stores</title>
      <description>How feature stores grow with the team.</description>
      <link>https://example.com/episodes/1</link>
      <enclosure url="https://example.com/audio/1.mp3" type="audio/mpeg" length="1024"/>
      <itunes:summary>A deep dive into feature store scaling.</itunes:summary>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Streaming Joins in Practice</title>
      <description>Joining streams without losing your mind.</description>
      <link>https://example.com/episodes/2</link>
    </item>
    <item>
      <title></title>
      <description>Item without a title is skipped.</description>
    </item>
  </channel>
</rss>`

type fakeSaver struct {
	episodes []*domain.Episode
	err      error
}

func (f *fakeSaver) SaveEpisode(ctx context.Context, ep *domain.Episode) error {
	if f.err != nil {
		return f.err
	}
	f.episodes = append(f.episodes, ep)
	return nil
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestImportURL(t *testing.T) {
	server := feedServer(t, sampleFeed)
	saver := &fakeSaver{}

	saved, err := NewImporter(saver).ImportURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ImportURL: %v", err)
	}
	if saved != 2 {
		t.Fatalf("expected 2 saved episodes (untitled item skipped), got %d", saved)
	}

	first := saver.episodes[0]
	if first.Title != "Scaling Feature Stores" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.AudioURL != "https://example.com/audio/1.mp3" {
		t.Errorf("expected audio enclosure url, got %q", first.AudioURL)
	}
	if first.Summary != "A deep dive into feature store scaling." {
		t.Errorf("expected itunes summary, got %q", first.Summary)
	}
	if first.PublishedAt.IsZero() {
		t.Error("expected parsed publish date")
	}

	second := saver.episodes[1]
	if second.AudioURL != "https://example.com/episodes/2" {
		t.Errorf("expected link fallback without enclosure, got %q", second.AudioURL)
	}
}

func TestImportURL_SaverFailureStopsTheImport(t *testing.T) {
	server := feedServer(t, sampleFeed)
	saver := &fakeSaver{err: errors.New("connection refused")}

	saved, err := NewImporter(saver).ImportURL(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected the save error to surface")
	}
	if saved != 0 {
		t.Errorf("expected 0 saved, got %d", saved)
	}
}

func TestImportURL_EmptyFeed(t *testing.T) {
	server := feedServer(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`)

	if _, err := NewImporter(&fakeSaver{}).ImportURL(context.Background(), server.URL); err == nil {
		t.Fatal("expected an error for a feed without items")
	}
}

func TestImportURL_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	if _, err := NewImporter(&fakeSaver{}).ImportURL(context.Background(), server.URL); err == nil {
		t.Fatal("expected an error for a failing feed fetch")
	}
}
