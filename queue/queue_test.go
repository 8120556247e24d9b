/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import (
	"strings"
	"testing"

	"github.com/friendsincode/rias/lavalink"
)

func track(id, author string) lavalink.Track {
	return lavalink.Track{
		Encoded:    "enc-" + id,
		Identifier: id,
		Title:      "title-" + id,
		Author:     author,
		LengthMs:   1000,
		SourceName: "youtube",
	}
}

func TestPollEmptyQueue(t *testing.T) {
	q := New()
	if got := q.Poll(); got != nil {
		t.Fatalf("Poll on empty queue = %v, want nil", got)
	}
	if q.Current() != nil {
		t.Fatalf("Current after empty poll should be nil")
	}
}

func TestPollRoundTrip(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	q.Add(track("2", "B"))

	first := q.Poll()
	if first == nil || first.Identifier != "1" {
		t.Fatalf("first poll = %v, want track 1", first)
	}
	if q.Len() != 1 {
		t.Fatalf("queue len after first poll = %d, want 1", q.Len())
	}

	second := q.Poll()
	if second == nil || second.Identifier != "2" {
		t.Fatalf("second poll = %v, want track 2", second)
	}
	if q.Previous() == nil || q.Previous().Identifier != "1" {
		t.Fatalf("previous after second poll = %v, want track 1", q.Previous())
	}

	third := q.Poll()
	if third != nil {
		t.Fatalf("third poll = %v, want nil", third)
	}
}

func TestPollLoopTrack(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	q.Add(track("2", "B"))
	q.SetLoopMode(LoopTrack)

	first := q.Poll()
	if first == nil || first.Identifier != "1" {
		t.Fatalf("first poll = %v, want track 1", first)
	}
	for i := 0; i < 3; i++ {
		got := q.Poll()
		if got == nil || got.Identifier != "1" {
			t.Fatalf("repeated poll under LoopTrack = %v, want track 1", got)
		}
	}
	if q.Len() != 1 {
		t.Fatalf("queue should not drain under LoopTrack, len = %d", q.Len())
	}
}

func TestPollLoopQueue(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	q.Add(track("2", "B"))
	q.SetLoopMode(LoopQueue)

	order := []string{}
	for i := 0; i < 6; i++ {
		got := q.Poll()
		if got == nil {
			t.Fatalf("poll %d returned nil under LoopQueue", i)
		}
		order = append(order, got.Identifier)
	}

	want := []string{"1", "2", "1", "2", "1", "2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("loop-queue order = %v, want %v", order, want)
		}
	}
}

func TestInsertBounds(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	q.Add(track("2", "B"))

	if err := q.Insert(1, track("x", "X")); err != nil {
		t.Fatalf("Insert(1) failed: %v", err)
	}
	got, _ := q.At(1)
	if got.Identifier != "x" {
		t.Fatalf("At(1) after insert = %v, want x", got.Identifier)
	}

	if err := q.Insert(100, track("y", "Y")); err == nil {
		t.Fatalf("Insert out of bounds should error")
	}
	if err := q.Insert(q.Len(), track("z", "Z")); err != nil {
		t.Fatalf("Insert at len() should succeed: %v", err)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	q.Add(track("2", "B"))
	q.Add(track("1", "A"))

	q.RemoveDuplicates()
	if q.Len() != 2 {
		t.Fatalf("len after dedup = %d, want 2", q.Len())
	}
	got, _ := q.At(0)
	if got.Identifier != "1" {
		t.Fatalf("dedup should keep first occurrence, got %v", got.Identifier)
	}
}

func TestRemoveByAuthor(t *testing.T) {
	q := New()
	q.Add(track("1", "The Beatles"))
	q.Add(track("2", "Beatles Tribute"))
	q.Add(track("3", "Someone Else"))

	removed := q.RemoveByAuthor("beatles")
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if q.Len() != 1 {
		t.Fatalf("len after RemoveByAuthor = %d, want 1", q.Len())
	}
}

func TestMoveAndSwap(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	q.Add(track("2", "B"))
	q.Add(track("3", "C"))

	if err := q.Move(0, 2); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	ids := idsOf(t, q)
	if strings.Join(ids, ",") != "2,3,1" {
		t.Fatalf("order after move = %v, want [2 3 1]", ids)
	}

	if err := q.Swap(0, 2); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	ids = idsOf(t, q)
	if strings.Join(ids, ",") != "1,3,2" {
		t.Fatalf("order after swap = %v, want [1 3 2]", ids)
	}
}

func idsOf(t *testing.T, q *Queue) []string {
	t.Helper()
	out := make([]string, q.Len())
	for i := range out {
		tr, err := q.At(i)
		if err != nil {
			t.Fatalf("At(%d) failed: %v", i, err)
		}
		out[i] = tr.Identifier
	}
	return out
}

func TestCloneIsIndependent(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	clone := q.Clone()

	clone.Add(track("2", "B"))
	if q.Len() != 1 {
		t.Fatalf("mutating clone affected original, len = %d", q.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("clone len = %d, want 2", clone.Len())
	}
}

func TestSmartShuffleIsPermutation(t *testing.T) {
	q := New()
	authors := []string{"A", "A", "A", "B", "B", "C"}
	for i, a := range authors {
		q.Add(track(string(rune('1'+i)), a))
	}

	before := make(map[string]int)
	for _, tr := range q.tracks {
		before[tr.Identifier]++
	}

	q.SmartShuffle()

	after := make(map[string]int)
	for _, tr := range q.tracks {
		after[tr.Identifier]++
	}

	if len(before) != len(after) {
		t.Fatalf("smart shuffle changed track set size")
	}
	for id, n := range before {
		if after[id] != n {
			t.Fatalf("smart shuffle lost or duplicated track %s", id)
		}
	}
}

func TestSmartShuffleAvoidsAdjacentSameAuthor(t *testing.T) {
	// [A1,A2,A3,B1,C1]: 3 of 5 are author A, which does not exceed
	// ceil(5/2), so an arrangement with no adjacent same-author pair
	// exists (A,x,A,y,A) and the algorithm must find one.
	q := New()
	q.Add(track("A1", "A"))
	q.Add(track("A2", "A"))
	q.Add(track("A3", "A"))
	q.Add(track("B1", "B"))
	q.Add(track("C1", "C"))

	q.SmartShuffle()

	if q.Len() != 5 {
		t.Fatalf("len after smart shuffle = %d, want 5", q.Len())
	}

	adjacentSame := 0
	for i := 1; i < len(q.tracks); i++ {
		if strings.EqualFold(q.tracks[i].Author, q.tracks[i-1].Author) {
			adjacentSame++
		}
	}
	// With buckets {A:3,B:1,C:1}, largest-bucket-first emission that
	// skips the previous author yields A,B,A,C,A (or A,C,A,B,A).
	if adjacentSame != 0 {
		t.Fatalf("smart shuffle produced %d adjacent same-author pairs, want 0", adjacentSame)
	}
}

func TestSliceOutOfRange(t *testing.T) {
	q := New()
	q.Add(track("1", "A"))
	q.Add(track("2", "B"))

	if _, err := q.Slice(0, nil); err != nil {
		t.Fatalf("Slice(0,nil) failed: %v", err)
	}
	bad := 5
	if _, err := q.Slice(0, &bad); err == nil {
		t.Fatalf("Slice with out-of-range end should error")
	}
}

func TestToggleLoop(t *testing.T) {
	q := New()
	if q.LoopMode() != LoopNone {
		t.Fatalf("default loop mode = %v, want LoopNone", q.LoopMode())
	}
	if got := q.ToggleLoop(); got != LoopQueue {
		t.Fatalf("ToggleLoop from None = %v, want LoopQueue", got)
	}
	if got := q.ToggleLoop(); got != LoopNone {
		t.Fatalf("ToggleLoop from Queue = %v, want LoopNone", got)
	}
}

func TestParseLoopMode(t *testing.T) {
	cases := map[string]LoopMode{
		"none": LoopNone, "NONE": LoopNone,
		"track": LoopTrack, "Track": LoopTrack,
		"queue": LoopQueue, "QUEUE": LoopQueue,
	}
	for in, want := range cases {
		got, err := ParseLoopMode(in)
		if err != nil {
			t.Fatalf("ParseLoopMode(%q) errored: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLoopMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLoopMode("bogus"); err == nil {
		t.Fatalf("ParseLoopMode(bogus) should error")
	}
}
