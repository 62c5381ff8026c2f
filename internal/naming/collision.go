package naming

import (
	"fmt"
	"sync"
)

// LabelResolver hands out run-unique channel labels. Two devices logging
// the same channel produce the same legend label; places that need a
// unique key (spreadsheet sheets, report rows) resolve it here. It is safe
// for sequential use within a single run. All methods are goroutine-safe.
type LabelResolver struct {
	mu       sync.Mutex
	owners   map[string]string // label → path that owns it
	resolved map[string]string // path → label handed out
	counters map[string]int    // base label → next dup counter
}

// NewLabelResolver creates a ready-to-use resolver.
func NewLabelResolver() *LabelResolver {
	return &LabelResolver{
		owners:   make(map[string]string),
		resolved: make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns a unique label for the channel file at path. A path
// always gets back the label it was first given. Otherwise the plain label
// is used when unclaimed, then the device id is tried ("ch01 (002)"), then
// " - dupN" variants.
func (lr *LabelResolver) Resolve(path string, cn ChannelName) string {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if label, ok := lr.resolved[path]; ok {
		return label
	}
	if lr.claim(cn.Label, path) {
		return cn.Label
	}
	if cn.Device != "" {
		if candidate := fmt.Sprintf("%s (%s)", cn.Label, cn.Device); lr.claim(candidate, path) {
			return candidate
		}
	}

	counter := lr.counters[cn.Label]
	if counter == 0 {
		counter = 1
	}
	for {
		candidate := fmt.Sprintf("%s - dup%d", cn.Label, counter)
		if lr.claim(candidate, path) {
			lr.counters[cn.Label] = counter + 1
			return candidate
		}
		counter++
	}
}

func (lr *LabelResolver) claim(label, path string) bool {
	owner, exists := lr.owners[label]
	if exists && owner != path {
		return false
	}
	lr.owners[label] = path
	lr.resolved[path] = label
	return true
}
