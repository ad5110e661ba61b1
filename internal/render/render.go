// Package render turns article Markdown into HTML and derives cache validators.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in article bodies is escaped, not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

// Renderer converts Markdown to HTML, memoising by content hash
type Renderer struct {
	mu         sync.RWMutex
	cache      map[uint64]string
	maxEntries int
}

// NewRenderer creates a renderer that keeps up to maxEntries results
func NewRenderer(maxEntries int) *Renderer {
	return &Renderer{
		cache:      make(map[uint64]string),
		maxEntries: maxEntries,
	}
}

// HTML renders content
func (r *Renderer) HTML(content string) (string, error) {
	key := xxhash.Sum64String(content)

	r.mu.RLock()
	html, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return html, nil
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	html = buf.String()

	r.mu.Lock()
	if len(r.cache) >= r.maxEntries {
		// drop everything; entries are cheap to rebuild
		r.cache = make(map[uint64]string)
	}
	r.cache[key] = html
	r.mu.Unlock()

	return html, nil
}

// Len reports the number of cached renders
func (r *Renderer) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// ETag returns a weak validator that changes whenever the article's
// content, status or counters change
func ETag(a *models.Article) string {
	d := xxhash.New()
	d.WriteString(a.ID)
	d.WriteString(a.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999"))
	d.WriteString(string(a.Status))
	d.WriteString(string(a.Visibility))
	d.WriteString(strconv.Itoa(a.LikesCount))
	d.WriteString(strconv.Itoa(a.CommentsCount))
	d.WriteString(strconv.Itoa(a.ViewsCount))
	return fmt.Sprintf(`W/"%016x"`, d.Sum64())
}
