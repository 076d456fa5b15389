package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver hands out distinct output paths within one run. Two
// inputs that map to the same output (clip.mov and clip.mp4 transcoded to
// the same container, say) get clip_speedy.mp4 and clip_speedy_2.mp4.
// Reserved paths, typically the inputs themselves, are never handed out.
// All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // output path → input that owns it
	counters map[string]int    // requested path → next counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Reserve marks paths as unavailable for outputs.
func (cr *CollisionResolver) Reserve(paths ...string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	for _, p := range paths {
		cr.owners[filepath.Clean(p)] = ""
	}
}

// Resolve returns the output path for input. requested is returned as is
// when it is free or already owned by input; otherwise a numbered variant
// <stem>_N<ext> is chosen, starting at 2.
func (cr *CollisionResolver) Resolve(input, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	requested = filepath.Clean(requested)
	if cr.claim(input, requested) {
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	n := cr.counters[requested]
	if n < 2 {
		n = 2
	}
	for ; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if cr.claim(input, candidate) {
			cr.counters[requested] = n + 1
			return candidate
		}
	}
}

// claim must be called with mu held.
func (cr *CollisionResolver) claim(input, path string) bool {
	owner, taken := cr.owners[path]
	if taken && (owner == "" || owner != input) {
		return false
	}
	cr.owners[path] = input
	return true
}
