/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"container/heap"
	"fmt"
	"math/rand"
	"strings"

	"github.com/friendsincode/rias/lavalink"
)

// Queue is an ordered, mutable list of tracks plus current/previous
// pointers and a loop mode. The zero value is a ready-to-use empty
// queue.
type Queue struct {
	tracks   []lavalink.Track
	current  *lavalink.Track
	previous *lavalink.Track
	loopMode LoopMode
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Current returns the currently playing track, or nil.
func (q *Queue) Current() *lavalink.Track {
	return q.current
}

// Previous returns the track that played before Current, or nil.
func (q *Queue) Previous() *lavalink.Track {
	return q.previous
}

// LoopMode returns the queue's current loop mode.
func (q *Queue) LoopMode() LoopMode {
	return q.loopMode
}

// SetLoopMode changes the loop mode.
func (q *Queue) SetLoopMode(mode LoopMode) {
	q.loopMode = mode
}

// ToggleLoop flips between LoopNone and LoopQueue; from LoopTrack it
// switches to LoopQueue. It never selects LoopTrack.
func (q *Queue) ToggleLoop() LoopMode {
	if q.loopMode == LoopQueue {
		q.loopMode = LoopNone
	} else {
		q.loopMode = LoopQueue
	}
	return q.loopMode
}

// Len returns the number of queued (not counting current) tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty reports whether the queue has no queued tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Add appends a track to the tail of the queue.
func (q *Queue) Add(t lavalink.Track) {
	q.tracks = append(q.tracks, t)
}

// AddMany appends multiple tracks to the tail of the queue, preserving
// their relative order.
func (q *Queue) AddMany(tracks []lavalink.Track) {
	q.tracks = append(q.tracks, tracks...)
}

// Insert places t at index i, shifting successors right. i must be in
// [0, Len()].
func (q *Queue) Insert(i int, t lavalink.Track) error {
	if i < 0 || i > len(q.tracks) {
		return fmt.Errorf("queue: insert index %d out of range [0,%d]", i, len(q.tracks))
	}
	q.tracks = append(q.tracks, lavalink.Track{})
	copy(q.tracks[i+1:], q.tracks[i:])
	q.tracks[i] = t
	return nil
}

// Remove deletes the track at index i, shifting successors left.
func (q *Queue) Remove(i int) (lavalink.Track, error) {
	if i < 0 || i >= len(q.tracks) {
		return lavalink.Track{}, fmt.Errorf("queue: remove index %d out of range [0,%d)", i, len(q.tracks))
	}
	t := q.tracks[i]
	q.tracks = append(q.tracks[:i], q.tracks[i+1:]...)
	return t, nil
}

// Poll advances playback:
//
//  1. Under LoopTrack with a non-nil Current, returns Current unchanged.
//  2. Otherwise sets Previous<-Current, pops the head of the queue into
//     Current, and — under LoopQueue with both Previous and the new
//     Current non-nil — appends Previous to the tail.
func (q *Queue) Poll() *lavalink.Track {
	if q.loopMode == LoopTrack && q.current != nil {
		return q.current
	}

	q.previous = q.current
	if len(q.tracks) == 0 {
		q.current = nil
	} else {
		next := q.tracks[0]
		q.tracks = q.tracks[1:]
		q.current = &next
	}

	if q.loopMode == LoopQueue && q.previous != nil && q.current != nil {
		q.tracks = append(q.tracks, *q.previous)
	}

	return q.current
}

// Peek returns the track Poll would return next, without mutating the
// queue (it does not evaluate LoopTrack/LoopQueue side effects).
func (q *Queue) Peek() *lavalink.Track {
	if q.loopMode == LoopTrack && q.current != nil {
		return q.current
	}
	if len(q.tracks) == 0 {
		return nil
	}
	t := q.tracks[0]
	return &t
}

// Clear empties the queued tracks, leaving Current/Previous untouched.
func (q *Queue) Clear() {
	q.tracks = nil
}

// Shuffle performs a uniform Fisher-Yates shuffle of the queued tracks.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})
}

// SkipTo drops tracks[0:i) then polls, per Open Question (b): the polled
// track becomes Current.
func (q *Queue) SkipTo(i int) (*lavalink.Track, error) {
	if i < 0 || i > len(q.tracks) {
		return nil, fmt.Errorf("queue: skip-to index %d out of range [0,%d]", i, len(q.tracks))
	}
	q.tracks = q.tracks[i:]
	return q.Poll(), nil
}

// At returns the track at index i without mutating the queue.
func (q *Queue) At(i int) (lavalink.Track, error) {
	if i < 0 || i >= len(q.tracks) {
		return lavalink.Track{}, fmt.Errorf("queue: index %d out of range [0,%d)", i, len(q.tracks))
	}
	return q.tracks[i], nil
}

// Move relocates the track at index from to index to.
func (q *Queue) Move(from, to int) error {
	if from < 0 || from >= len(q.tracks) || to < 0 || to >= len(q.tracks) {
		return fmt.Errorf("queue: move indices (%d,%d) out of range [0,%d)", from, to, len(q.tracks))
	}
	t := q.tracks[from]
	q.tracks = append(q.tracks[:from], q.tracks[from+1:]...)
	q.tracks = append(q.tracks[:to], append([]lavalink.Track{t}, q.tracks[to:]...)...)
	return nil
}

// Swap exchanges the tracks at indices a and b.
func (q *Queue) Swap(a, b int) error {
	if a < 0 || a >= len(q.tracks) || b < 0 || b >= len(q.tracks) {
		return fmt.Errorf("queue: swap indices (%d,%d) out of range [0,%d)", a, b, len(q.tracks))
	}
	q.tracks[a], q.tracks[b] = q.tracks[b], q.tracks[a]
	return nil
}

// Find returns the first track satisfying pred and its index, or (nil,-1).
func (q *Queue) Find(pred func(lavalink.Track) bool) (*lavalink.Track, int) {
	for i, t := range q.tracks {
		if pred(t) {
			track := t
			return &track, i
		}
	}
	return nil, -1
}

// FindIndex returns the index of the first track satisfying pred, or -1.
func (q *Queue) FindIndex(pred func(lavalink.Track) bool) int {
	_, i := q.Find(pred)
	return i
}

// Filter returns the queued tracks satisfying pred, without mutating the
// queue.
func (q *Queue) Filter(pred func(lavalink.Track) bool) []lavalink.Track {
	out := make([]lavalink.Track, 0, len(q.tracks))
	for _, t := range q.tracks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// RemoveDuplicates drops later tracks sharing an Identifier with an
// earlier one, preserving the first occurrence's position.
func (q *Queue) RemoveDuplicates() {
	seen := make(map[string]struct{}, len(q.tracks))
	out := q.tracks[:0:0]
	for _, t := range q.tracks {
		if _, ok := seen[t.Identifier]; ok {
			continue
		}
		seen[t.Identifier] = struct{}{}
		out = append(out, t)
	}
	q.tracks = out
}

// FilterByAuthor returns queued tracks whose Author equals author
// (case-insensitive).
func (q *Queue) FilterByAuthor(author string) []lavalink.Track {
	lower := strings.ToLower(author)
	return q.Filter(func(t lavalink.Track) bool {
		return strings.ToLower(t.Author) == lower
	})
}

// FilterByDuration returns queued tracks whose length in milliseconds
// falls within [min, max].
func (q *Queue) FilterByDuration(min, max int64) []lavalink.Track {
	return q.Filter(func(t lavalink.Track) bool {
		return t.LengthMs >= min && t.LengthMs <= max
	})
}

// FilterBySource returns queued tracks whose SourceName equals source.
func (q *Queue) FilterBySource(source string) []lavalink.Track {
	return q.Filter(func(t lavalink.Track) bool {
		return t.SourceName == source
	})
}

// RemoveByAuthor removes queued tracks whose Author contains substr
// (case-insensitive), returning the number removed.
func (q *Queue) RemoveByAuthor(substr string) int {
	lower := strings.ToLower(substr)
	out := q.tracks[:0:0]
	removed := 0
	for _, t := range q.tracks {
		if strings.Contains(strings.ToLower(t.Author), lower) {
			removed++
			continue
		}
		out = append(out, t)
	}
	q.tracks = out
	return removed
}

// Reverse reverses the order of queued tracks in place.
func (q *Queue) Reverse() {
	for i, j := 0, len(q.tracks)-1; i < j; i, j = i+1, j-1 {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	}
}

// Slice returns a copy of queued tracks in [start, end). A nil end means
// "to the end of the queue".
func (q *Queue) Slice(start int, end *int) ([]lavalink.Track, error) {
	stop := len(q.tracks)
	if end != nil {
		stop = *end
	}
	if start < 0 || stop > len(q.tracks) || start > stop {
		return nil, fmt.Errorf("queue: slice [%d,%d) out of range [0,%d]", start, stop, len(q.tracks))
	}
	out := make([]lavalink.Track, stop-start)
	copy(out, q.tracks[start:stop])
	return out, nil
}

// Duration returns the sum of queued (non-current) track lengths in
// milliseconds.
func (q *Queue) Duration() int64 {
	var total int64
	for _, t := range q.tracks {
		total += t.LengthMs
	}
	return total
}

// TotalDuration is Duration plus the current track's length, unless the
// current track is a live stream.
func (q *Queue) TotalDuration() int64 {
	total := q.Duration()
	if q.current != nil && !q.current.IsStream {
		total += q.current.LengthMs
	}
	return total
}

// Summary is the aggregate view returned by GetSummary.
type Summary struct {
	Size           int
	Duration       int64
	TotalDuration  int64
	IsEmpty        bool
	Current        *lavalink.Track
	Previous       *lavalink.Track
	LoopMode       LoopMode
	UniqueAuthors  []string
	UniqueSources  []string
}

// GetSummary computes the aggregate queue view used for display.
func (q *Queue) GetSummary() Summary {
	authors := make(map[string]struct{})
	sources := make(map[string]struct{})
	for _, t := range q.tracks {
		authors[t.Author] = struct{}{}
		sources[t.SourceName] = struct{}{}
	}
	return Summary{
		Size:          len(q.tracks),
		Duration:      q.Duration(),
		TotalDuration: q.TotalDuration(),
		IsEmpty:       len(q.tracks) == 0,
		Current:       q.current,
		Previous:      q.previous,
		LoopMode:      q.loopMode,
		UniqueAuthors: keys(authors),
		UniqueSources: keys(sources),
	}
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Clone returns a shallow copy: a new Queue with an independent backing
// slice of the same Track values.
func (q *Queue) Clone() *Queue {
	clone := &Queue{
		tracks:   make([]lavalink.Track, len(q.tracks)),
		loopMode: q.loopMode,
	}
	copy(clone.tracks, q.tracks)
	if q.current != nil {
		c := *q.current
		clone.current = &c
	}
	if q.previous != nil {
		p := *q.previous
		clone.previous = &p
	}
	return clone
}

// SmartShuffle reorders queued tracks to avoid, wherever the input
// distribution allows it, two consecutive tracks sharing an author. It
// groups tracks by trimmed, case-folded Author, shuffles each bucket
// internally, then repeatedly emits from the largest remaining bucket —
// skipping to the next-largest bucket when the largest one's author
// matches the previously emitted author.
func (q *Queue) SmartShuffle() {
	if len(q.tracks) <= 1 {
		return
	}

	buckets := make(map[string][]lavalink.Track)
	var order []string
	for _, t := range q.tracks {
		key := strings.ToLower(strings.TrimSpace(t.Author))
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], t)
	}
	for _, key := range order {
		rand.Shuffle(len(buckets[key]), func(i, j int) {
			buckets[key][i], buckets[key][j] = buckets[key][j], buckets[key][i]
		})
	}

	pq := make(authorHeap, 0, len(buckets))
	for key, tracks := range buckets {
		pq = append(pq, &authorBucket{key: key, tracks: tracks})
	}
	heap.Init(&pq)

	out := make([]lavalink.Track, 0, len(q.tracks))
	lastKey := ""
	for pq.Len() > 0 {
		top := heap.Pop(&pq).(*authorBucket)

		if top.key == lastKey && pq.Len() > 0 {
			// Take the next-largest bucket instead, push top back.
			second := heap.Pop(&pq).(*authorBucket)
			out = append(out, second.tracks[0])
			lastKey = second.key
			second.tracks = second.tracks[1:]
			if len(second.tracks) > 0 {
				heap.Push(&pq, second)
			}
			heap.Push(&pq, top)
			continue
		}

		out = append(out, top.tracks[0])
		lastKey = top.key
		top.tracks = top.tracks[1:]
		if len(top.tracks) > 0 {
			heap.Push(&pq, top)
		}
	}

	q.tracks = out
}

type authorBucket struct {
	key    string
	tracks []lavalink.Track
}

// authorHeap is a max-heap keyed by remaining bucket size.
type authorHeap []*authorBucket

func (h authorHeap) Len() int            { return len(h) }
func (h authorHeap) Less(i, j int) bool  { return len(h[i].tracks) > len(h[j].tracks) }
func (h authorHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *authorHeap) Push(x any)         { *h = append(*h, x.(*authorBucket)) }
func (h *authorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
