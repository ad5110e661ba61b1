package client

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrStale is returned when a response arrived after a newer request
	// or a Detach; the response was discarded
	ErrStale = errors.New("client: response superseded")
	// ErrDetached is returned for calls made after Detach
	ErrDetached = errors.New("client: view detached")
	// ErrNotLoaded is returned for mutations before the first Load
	ErrNotLoaded = errors.New("client: view not loaded")
)

// ViewState is a point-in-time copy of an ArticleView
type ViewState struct {
	Article       *Article
	HTML          string
	Liked         bool
	LikesCount    int
	CommentsCount int
	Comments      []*Comment
	ETag          string
}

// ArticleView holds the locally displayed state of one article. Like
// toggles are applied optimistically and settled by the server answer;
// counters are only hints until the next Load replaces them.
//
// Every Load and Detach starts a new epoch. A response is applied only if
// no newer epoch began while it was in flight, and a like answer only if no
// newer toggle was issued, so late answers never overwrite fresher state.
type ArticleView struct {
	client *Client
	ref    string

	mu       sync.Mutex
	epoch    uint64
	likeSeq  uint64
	detached bool
	loaded   bool
	state    ViewState
}

// NewArticleView creates an unloaded view of the article with id or slug ref
func NewArticleView(c *Client, ref string) *ArticleView {
	return &ArticleView{client: c, ref: ref}
}

// Load fetches the article and replaces the local state with the server's
func (v *ArticleView) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return ErrDetached
	}
	v.epoch++
	epoch := v.epoch
	v.mu.Unlock()

	detail, err := v.client.Article(ctx, v.ref)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.epoch != epoch {
		return ErrStale
	}
	if err != nil {
		return err
	}

	article := detail.Article
	v.state = ViewState{
		Article:       &article,
		HTML:          detail.HTML,
		Liked:         detail.Liked,
		LikesCount:    detail.LikesCount,
		CommentsCount: detail.CommentsCount,
		Comments:      detail.Comments,
		ETag:          detail.ETag,
	}
	v.loaded = true
	return nil
}

// ToggleLike flips the like locally, then settles it with the server.
// On failure the local state is rolled back.
func (v *ArticleView) ToggleLike(ctx context.Context) error {
	if !v.client.SignedIn() {
		return ErrUnauthenticated
	}

	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return ErrDetached
	}
	if !v.loaded {
		v.mu.Unlock()
		return ErrNotLoaded
	}
	prevLiked, prevCount := v.state.Liked, v.state.LikesCount
	v.state.Liked = !prevLiked
	if v.state.Liked {
		v.state.LikesCount++
	} else if v.state.LikesCount > 0 {
		v.state.LikesCount--
	}
	v.likeSeq++
	epoch, seq := v.epoch, v.likeSeq
	articleID := v.state.Article.ID
	v.mu.Unlock()

	result, err := v.client.ToggleLike(ctx, articleID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.epoch != epoch || v.likeSeq != seq {
		return ErrStale
	}
	if err != nil {
		v.state.Liked, v.state.LikesCount = prevLiked, prevCount
		return err
	}
	v.state.Liked = result.Liked
	v.state.LikesCount = result.LikesCount
	return nil
}

// PostComment sends a comment and, once accepted, shows it first
func (v *ArticleView) PostComment(ctx context.Context, content string) (*Comment, error) {
	if !v.client.SignedIn() {
		return nil, ErrUnauthenticated
	}

	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return nil, ErrDetached
	}
	if !v.loaded {
		v.mu.Unlock()
		return nil, ErrNotLoaded
	}
	epoch := v.epoch
	articleID := v.state.Article.ID
	v.mu.Unlock()

	comment, err := v.client.PostComment(ctx, articleID, content)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.epoch != epoch {
		return comment, ErrStale
	}
	v.state.Comments = append([]*Comment{comment}, v.state.Comments...)
	v.state.CommentsCount++
	return comment, nil
}

// Detach stops the view; responses still in flight are discarded
func (v *ArticleView) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detached = true
	v.epoch++
}

// State returns a copy of the current local state
func (v *ArticleView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.state
	if s.Article != nil {
		article := *s.Article
		s.Article = &article
	}
	s.Comments = append([]*Comment(nil), s.Comments...)
	return s
}
