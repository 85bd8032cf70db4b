// Package transit fetches MTA GTFS-Realtime feeds and projects them into
// train arrivals and service alerts
package transit

import (
	"sort"
	"strings"
)

// DefaultFeedBaseURL is the MTA GTFS-RT endpoint root
const DefaultFeedBaseURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds"

// Upstream feed identifiers, as they appear in the endpoint path
const (
	FeedNumbered = "nyct%2Fgtfs"
	FeedNQRW     = "nyct%2Fgtfs-nqrw"
	FeedBDFM     = "nyct%2Fgtfs-bdfm"
	FeedACE      = "nyct%2Fgtfs-ace"
	FeedG        = "nyct%2Fgtfs-g"
	FeedJZ       = "nyct%2Fgtfs-jz"
	FeedL        = "nyct%2Fgtfs-l"
	FeedSIR      = "nyct%2Fgtfs-si"

	AlertsFeed = "camsys%2Fall-alerts"
)

// feedLines lists the lines carried by each feed
var feedLines = map[string][]string{
	FeedNumbered: {"1", "2", "3", "4", "5", "6", "7", "S"},
	FeedNQRW:     {"N", "Q", "R", "W"},
	FeedBDFM:     {"B", "D", "F", "M"},
	FeedACE:      {"A", "C", "E"},
	FeedG:        {"G"},
	FeedJZ:       {"J", "Z"},
	FeedL:        {"L"},
	FeedSIR:      {"SIR"},
}

// lineToFeed maps line codes to their feed
var lineToFeed = func() map[string]string {
	m := make(map[string]string)
	for feed, lines := range feedLines {
		for _, line := range lines {
			m[line] = feed
		}
	}
	return m
}()

// FeedForLine returns the feed carrying line. Unknown lines use the numbered-lines feed.
func FeedForLine(line string) string {
	if feed, ok := lineToFeed[strings.ToUpper(line)]; ok {
		return feed
	}
	return FeedNumbered
}

// LinesForFeed returns the lines carried by feedID, or nil for an unknown feed
func LinesForFeed(feedID string) []string {
	lines := feedLines[feedID]
	if lines == nil {
		return nil
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// AllLines returns every known line code, sorted
func AllLines() []string {
	lines := make([]string, 0, len(lineToFeed))
	for line := range lineToFeed {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}

// AllFeeds returns every train feed id, sorted
func AllFeeds() []string {
	feeds := make([]string, 0, len(feedLines))
	for feed := range feedLines {
		feeds = append(feeds, feed)
	}
	sort.Strings(feeds)
	return feeds
}

// CarsForLine returns the typical train length of a line
func CarsForLine(line string) int {
	switch line {
	case "1", "2", "3", "4", "5", "6":
		return 10
	case "7":
		return 11
	case "N", "Q", "R", "W", "B", "D", "F", "M", "A", "C", "E", "G", "J", "Z", "L":
		return 8
	case "S", "SIR":
		return 4
	}
	return 8
}

// FeedGroup is a set of requested lines that share one feed
type FeedGroup struct {
	FeedID string
	Lines  []string
}

// GroupLinesByFeed groups lines by feed, preserving first-seen order
func GroupLinesByFeed(lines []string) []FeedGroup {
	var groups []FeedGroup
	index := make(map[string]int)
	for _, line := range lines {
		feed := FeedForLine(line)
		i, ok := index[feed]
		if !ok {
			i = len(groups)
			index[feed] = i
			groups = append(groups, FeedGroup{FeedID: feed})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}
	return groups
}

// FeedURL joins a base URL and a feed id
func FeedURL(baseURL, feedID string) string {
	return strings.TrimRight(baseURL, "/") + "/" + feedID
}
