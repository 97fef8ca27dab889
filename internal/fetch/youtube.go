package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
)

var captionTrackRe = regexp.MustCompile(`"captionTracks":\[\{"baseUrl":"(.*?)"`)

// YouTube fetches video transcripts. The watch page embeds the caption
// track URL; the track itself is timedtext XML.
type YouTube struct {
	http *HTTPClient
}

func NewYouTube(client *HTTPClient) *YouTube {
	return &YouTube{http: client}
}

// Transcript returns the plain-text transcript of the given video URL.
// Videos without captions are an error, not an empty transcript.
func (y *YouTube) Transcript(ctx context.Context, rawURL string) (string, error) {
	videoID, err := extractVideoID(rawURL)
	if err != nil {
		return "", err
	}

	page, err := y.http.Get(ctx, "https://www.youtube.com/watch?v="+url.QueryEscape(videoID), nil)
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}

	m := captionTrackRe.FindSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("video %s has no caption tracks", videoID)
	}
	// The URL is embedded in JSON, so ampersands arrive escaped.
	trackURL := strings.ReplaceAll(string(m[1]), `\u0026`, "&")

	track, err := y.http.Get(ctx, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch caption track: %w", err)
	}
	return decodeTimedText(track)
}

// extractVideoID pulls the video identifier out of watch, short, and
// embed URL shapes.
func extractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}
	if strings.Contains(u.Host, "youtu.be") {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	if strings.Contains(u.Path, "/embed/") {
		parts := strings.Split(u.Path, "/embed/")
		if id := strings.Trim(parts[len(parts)-1], "/"); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("no video id in url %q", rawURL)
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func decodeTimedText(raw []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return "", fmt.Errorf("decode caption track: %w", err)
	}
	lines := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
