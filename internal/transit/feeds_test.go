package transit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randytsao24/meetmta/internal/transit"
)

func TestFeedForLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"1", transit.FeedNumbered},
		{"7", transit.FeedNumbered},
		{"S", transit.FeedNumbered},
		{"N", transit.FeedNQRW},
		{"w", transit.FeedNQRW},
		{"F", transit.FeedBDFM},
		{"A", transit.FeedACE},
		{"G", transit.FeedG},
		{"Z", transit.FeedJZ},
		{"L", transit.FeedL},
		{"SIR", transit.FeedSIR},
		{"X", transit.FeedNumbered},
		{"", transit.FeedNumbered},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, transit.FeedForLine(tt.line))
		})
	}
}

func TestEveryLineBelongsToItsFeed(t *testing.T) {
	for _, line := range transit.AllLines() {
		feed := transit.FeedForLine(line)
		assert.Contains(t, transit.LinesForFeed(feed), line)
	}
}

func TestLinesForUnknownFeed(t *testing.T) {
	assert.Nil(t, transit.LinesForFeed("nyct%2Fgtfs-bogus"))
}

func TestCarsForLine(t *testing.T) {
	tests := map[string]int{
		"1": 10, "6": 10, "7": 11,
		"N": 8, "A": 8, "L": 8,
		"S": 4, "SIR": 4,
		"unknown": 8,
	}
	for line, want := range tests {
		assert.Equal(t, want, transit.CarsForLine(line), line)
	}
	for _, line := range transit.AllLines() {
		assert.Positive(t, transit.CarsForLine(line), line)
	}
}

func TestGroupLinesByFeed(t *testing.T) {
	groups := transit.GroupLinesByFeed([]string{"N", "1", "Q", "2", "G"})

	assert.Equal(t, []transit.FeedGroup{
		{FeedID: transit.FeedNQRW, Lines: []string{"N", "Q"}},
		{FeedID: transit.FeedNumbered, Lines: []string{"1", "2"}},
		{FeedID: transit.FeedG, Lines: []string{"G"}},
	}, groups)
}

func TestFeedURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/feeds/nyct%2Fgtfs-l",
		transit.FeedURL("https://example.com/feeds/", transit.FeedL))
}
