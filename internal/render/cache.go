package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// idlePerKey bounds how many idle renderers are kept per option set
const idlePerKey = 4

// rendererCache hands out glamour renderers by option set. A TermRenderer
// is not safe for concurrent Render calls, so each caller checks one out
// and returns it when done.
type rendererCache struct {
	mu   sync.Mutex
	idle map[Options]chan *glamour.TermRenderer
}

var globalPool = newRendererCache()

func newRendererCache() *rendererCache {
	return &rendererCache{idle: make(map[Options]chan *glamour.TermRenderer)}
}

// cacheKey normalizes opts so style aliases share renderers
func cacheKey(opts Options) Options {
	opts.Style = ResolveStyle(opts.Style)
	return opts
}

func (c *rendererCache) slot(key Options) chan *glamour.TermRenderer {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.idle[key]
	if !ok {
		ch = make(chan *glamour.TermRenderer, idlePerKey)
		c.idle[key] = ch
	}
	return ch
}

// get returns an idle renderer for opts or builds a new one
func (c *rendererCache) get(opts Options) (*glamour.TermRenderer, error) {
	key := cacheKey(opts)
	select {
	case r := <-c.slot(key):
		return r, nil
	default:
	}
	return newRenderer(key)
}

// put keeps r for reuse, dropping it when the slot is full
func (c *rendererCache) put(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	select {
	case c.slot(cacheKey(opts)) <- r:
	default:
	}
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		// Accepts built-in names and JSON style files
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// ClearCache drops every idle renderer
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.idle = make(map[Options]chan *glamour.TermRenderer)
	globalPool.mu.Unlock()
}

// CacheSize returns the number of option sets seen since the last clear
func CacheSize() int {
	globalPool.mu.Lock()
	defer globalPool.mu.Unlock()
	return len(globalPool.idle)
}
