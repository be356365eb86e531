// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides a small least-recently-used cache keyed by
// name.
package cache

import (
	"container/list"
	"sync"
)

type entry[V any] struct {
	key   string
	value V
}

// LRU is a least-recently-used cache with a fixed capacity.  The cache
// can be safely accessed from multiple goroutines.
type LRU[V any] struct {
	size      int
	lock      sync.RWMutex
	evictList *list.List
	index     map[string]*list.Element
}

// New creates an empty cache holding at most size items.  A size of
// zero or less holds one.
func New[V any](size int) *LRU[V] {
	if size < 1 {
		size = 1
	}
	return &LRU[V]{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves an item from the cache.  If it is not present, calls
// the fetch function, and if that succeeds, saves the item and returns
// it.  This returns an error only if the item is not present and the
// fetch function returns an error.
//
// fetch runs under the cache's write lock, so it must not call back
// into the cache.
func (lru *LRU[V]) Get(key string, fetch func(string) (V, error)) (V, error) {
	// This sadly happens under a writer lock, since we need to move
	// the item to the front of the list if it is present
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(*entry[V]).value, nil
	}

	item, err := fetch(key)
	if err != nil {
		return item, err
	}
	lru.add(key, item)
	return item, nil
}

// Peek looks for an item in the cache without affecting its recency.
// This runs under a reader lock, and so can run concurrently with
// itself but not calls to Put or Get.
func (lru *LRU[V]) Peek(key string) (V, bool) {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	if element, present := lru.index[key]; present {
		return element.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Put adds an item to the cache, possibly evicting something.
func (lru *LRU[V]) Put(key string, item V) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Are we just updating an existing item?
	if element, present := lru.index[key]; present {
		element.Value.(*entry[V]).value = item
		lru.evictList.MoveToBack(element)
		return
	}
	lru.add(key, item)
}

// Remove takes an item out of the cache.  It does nothing if that key
// does not exist.
func (lru *LRU[V]) Remove(key string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		delete(lru.index, key)
		lru.evictList.Remove(element)
	}
}

// Purge empties the cache.
func (lru *LRU[V]) Purge() {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	lru.evictList.Init()
	lru.index = make(map[string]*list.Element)
}

// Len returns the number of items in the cache.
func (lru *LRU[V]) Len() int {
	lru.lock.RLock()
	defer lru.lock.RUnlock()
	return len(lru.index)
}

// add is an internal helper, running under the write lock, that adds a
// new item to the cache.  The key is known to not already exist.
func (lru *LRU[V]) add(key string, item V) {
	element := lru.evictList.PushBack(&entry[V]{key: key, value: item})
	lru.index[key] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		delete(lru.index, head.Value.(*entry[V]).key)
		lru.evictList.Remove(head)
	}
}
