package service

import (
	"sort"
	"sync"
)

// Counter counts dispatched commands by name for the lifetime of the process.
type Counter struct {
	counts map[string]int
	mutex  sync.Mutex
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Increment(name string) {
	c.mutex.Lock()
	c.counts[name]++
	c.mutex.Unlock()
}

func (c *Counter) Get(name string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.counts[name]
}

type CountEntry struct {
	Name  string
	Count int
}

// Snapshot returns the counts ordered by descending count, then name.
func (c *Counter) Snapshot() []CountEntry {
	c.mutex.Lock()
	entries := make([]CountEntry, 0, len(c.counts))
	for name, count := range c.counts {
		entries = append(entries, CountEntry{Name: name, Count: count})
	}
	c.mutex.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})

	return entries
}
