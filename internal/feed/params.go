package feed

import (
	"net/url"
	"strings"
)

// Query parameter names used to serialise a Filter
const (
	ParamQuery  = "q"
	ParamTags   = "tags"
	ParamAuthor = "author"
	ParamSort   = "sort"
)

// ParseQuery reads filter state from URL query parameters
func ParseQuery(v url.Values) Filter {
	f := Filter{
		Query:    strings.TrimSpace(v.Get(ParamQuery)),
		AuthorID: v.Get(ParamAuthor),
		Sort:     ParseSort(v.Get(ParamSort)),
	}
	for _, tag := range strings.Split(v.Get(ParamTags), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}
	return f
}

// Values serialises the filter; empty fields and the default sort are omitted
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set(ParamQuery, f.Query)
	}
	if len(f.Tags) > 0 {
		v.Set(ParamTags, strings.Join(f.Tags, ","))
	}
	if f.AuthorID != "" {
		v.Set(ParamAuthor, f.AuthorID)
	}
	if f.Sort != "" && f.Sort != SortLatest {
		v.Set(ParamSort, string(f.Sort))
	}
	return v
}

// ActiveCount counts the filter controls that differ from their defaults
func (f Filter) ActiveCount() int {
	n := len(f.Tags)
	if f.Query != "" {
		n++
	}
	if f.AuthorID != "" {
		n++
	}
	if f.Sort != "" && f.Sort != SortLatest {
		n++
	}
	return n
}
