// Package feed filters and orders already-fetched article lists.
//
// Everything here is pure: inputs are never mutated and nothing touches
// storage or the network, so callers may recompute on every filter change.
package feed

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/devnovate-blog-api/internal/models"
)

// SortKey selects the ordering of a feed
type SortKey string

const (
	SortLatest   SortKey = "latest"
	SortOldest   SortKey = "oldest"
	SortPopular  SortKey = "popular"
	SortTrending SortKey = "trending"
)

// ParseSort maps a query value to a sort key, defaulting to latest
func ParseSort(s string) SortKey {
	switch SortKey(s) {
	case SortOldest, SortPopular, SortTrending:
		return SortKey(s)
	default:
		return SortLatest
	}
}

// Filter is the user-controlled filter state of the article list
type Filter struct {
	Query    string
	Tags     []string
	AuthorID string
	Sort     SortKey
}

// Matches applies the search, tag and author predicates (ANDed)
func (f Filter) Matches(a *models.Article) bool {
	return f.matchesSearch(a) && f.matchesTags(a) && f.matchesAuthor(a)
}

func (f Filter) matchesSearch(a *models.Article) bool {
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Content), q) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// every selected tag must be present
func (f Filter) matchesTags(a *models.Article) bool {
	for _, tag := range f.Tags {
		if !a.HasTag(tag) {
			return false
		}
	}
	return true
}

func (f Filter) matchesAuthor(a *models.Article) bool {
	return f.AuthorID == "" || a.AuthorID == f.AuthorID
}

// Apply returns the articles matching f in the order f.Sort asks for.
// Ties keep input order.
func Apply(articles []*models.Article, f Filter, now time.Time) []*models.Article {
	out := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	Sort(out, f.Sort, now)
	return out
}

// Sort orders articles in place by key
func Sort(articles []*models.Article, key SortKey, now time.Time) {
	switch key {
	case SortOldest:
		sort.SliceStable(articles, func(i, j int) bool {
			return publishedAt(articles[i]).Before(publishedAt(articles[j]))
		})
	case SortPopular:
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].LikesCount > articles[j].LikesCount
		})
	case SortTrending:
		scores := make(map[*models.Article]float64, len(articles))
		for _, a := range articles {
			scores[a] = TrendingScore(a, now)
		}
		sort.SliceStable(articles, func(i, j int) bool {
			return scores[articles[i]] > scores[articles[j]]
		})
	default:
		sort.SliceStable(articles, func(i, j int) bool {
			return publishedAt(articles[i]).After(publishedAt(articles[j]))
		})
	}
}

// TrendingScore is likes*2 + comments + views*0.2 + a recency boost of
// max(0, 10 - whole days since publish). Future publish times count as day 0.
func TrendingScore(a *models.Article, now time.Time) float64 {
	score := float64(a.LikesCount*2+a.CommentsCount) + float64(a.ViewsCount)*0.2
	return score + recencyBoost(a, now)
}

func recencyBoost(a *models.Article, now time.Time) float64 {
	if a.PublishedAt == nil {
		return 0
	}
	days := math.Floor(now.Sub(*a.PublishedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return math.Max(0, 10-days)
}

// Trending returns the top n articles by trending score
func Trending(articles []*models.Article, n int, now time.Time) []*models.Article {
	out := make([]*models.Article, len(articles))
	copy(out, articles)
	Sort(out, SortTrending, now)
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Tags returns the distinct tags of the articles in sorted order
func Tags(articles []*models.Article) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, a := range articles {
		for _, tag := range a.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

func publishedAt(a *models.Article) time.Time {
	if a.PublishedAt == nil {
		return time.Time{}
	}
	return *a.PublishedAt
}
