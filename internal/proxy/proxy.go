// Package proxy tracks the relay endpoints used to reach the spreadsheet API
// and the order in which they are tried.
package proxy

import (
	"net/url"
	"strings"
	"sync"
)

// Proxy is a CORS relay that forwards a request to the URL appended to it.
type Proxy struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	URL  string `json:"url" yaml:"url" mapstructure:"url"`
}

// Wrap returns the address that fetches target through the proxy. A proxy
// with an empty URL requests target directly.
func (p Proxy) Wrap(target string) string {
	if p.URL == "" {
		return target
	}
	return p.URL + url.QueryEscape(target)
}

// Defaults are the public relays the dashboard has historically used.
func Defaults() []Proxy {
	return []Proxy{
		{Name: "corsproxy.io", URL: "https://corsproxy.io/?"},
		{Name: "cors-anywhere (backup)", URL: "https://cors-anywhere.herokuapp.com/"},
		{Name: "allorigins", URL: "https://api.allorigins.win/raw?url="},
	}
}

// AttemptOrder returns the indexes 0..n-1 starting at start and wrapping
// around. A start outside the range begins at 0.
func AttemptOrder(n, start int) []int {
	if n <= 0 {
		return nil
	}
	if start < 0 || start >= n {
		start = 0
	}
	order := make([]int, n)
	for i := range order {
		order[i] = (start + i) % n
	}
	return order
}

// Rotation holds the per-session proxy state: the last proxy that worked and
// the proxies tried since the last Reset. It only influences ordering; a
// proxy that failed before is still tried again. Each retrieval walks its own
// Order, so overlapping retrievals never share a position.
type Rotation struct {
	mu          sync.Mutex
	proxies     []Proxy
	lastSuccess int
	attempted   []string
}

// NewRotation creates a rotation over proxies, starting with the first one.
func NewRotation(proxies []Proxy) *Rotation {
	return &Rotation{
		proxies: append([]Proxy(nil), proxies...),
	}
}

// Len returns the number of proxies in the rotation.
func (r *Rotation) Len() int {
	return len(r.proxies)
}

// Order returns a fresh pass over every proxy, beginning at the last success.
func (r *Rotation) Order() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return AttemptOrder(len(r.proxies), r.lastSuccess)
}

// Attempt returns the proxy at index and marks it attempted. ok is false for
// an index outside the rotation.
func (r *Rotation) Attempt(index int) (p Proxy, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.proxies) {
		return Proxy{}, false
	}
	p = r.proxies[index]
	r.markAttempted(p.Name)
	return p, true
}

func (r *Rotation) markAttempted(name string) {
	for _, n := range r.attempted {
		if n == name {
			return
		}
	}
	r.attempted = append(r.attempted, name)
}

// RecordSuccess makes index the starting point of future passes.
func (r *Rotation) RecordSuccess(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index >= 0 && index < len(r.proxies) {
		r.lastSuccess = index
	}
}

// LastSuccess returns the index future passes start from.
func (r *Rotation) LastSuccess() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSuccess
}

// Reset clears the attempted list. The last success is kept.
func (r *Rotation) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempted = nil
}

// Attempted returns the names of proxies tried since the last Reset, in the
// order they were first tried.
func (r *Rotation) Attempted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.attempted...)
}

// JoinNames renders proxy names the way they are persisted for diagnostics.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}

// SplitNames is the inverse of JoinNames.
func SplitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
