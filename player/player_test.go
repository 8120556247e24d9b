/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/rias/lavalink"
	"github.com/friendsincode/rias/node"
	"github.com/friendsincode/rias/queue"
)

func newTestPlayer() *Player {
	n := node.New(node.Config{ID: "n1", Host: "localhost", Port: 2333, Password: "pw"}, zerolog.Nop(), nil)
	return New("123456789012345678", n, zerolog.Nop(), nil)
}

func TestConnectValidatesChannelID(t *testing.T) {
	p := newTestPlayer()
	if err := p.Connect("not-a-channel-id", nil, nil); !errors.Is(err, lavalink.ErrInvalidChannel) {
		t.Fatalf("Connect with bad channel id = %v, want ErrInvalidChannel", err)
	}
}

func TestConnectEmitsVoiceUpdate(t *testing.T) {
	p := newTestPlayer()
	received := make(chan Event, 1)
	p.On(EventVoiceUpdate, func(e Event) { received <- e })

	if err := p.Connect("123456789012345678", nil, nil); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case e := <-received:
		if e.VoiceJoin == nil || e.VoiceJoin.ChannelID != "123456789012345678" {
			t.Fatalf("voiceUpdate event = %+v, want channel 123456789012345678", e.VoiceJoin)
		}
		if e.VoiceJoin.SelfMute != false || e.VoiceJoin.SelfDeaf != true {
			t.Fatalf("voiceUpdate defaults = %+v, want mute=false deaf=true", e.VoiceJoin)
		}
	case <-time.After(time.Second):
		t.Fatal("voiceUpdate handler was not invoked")
	}
}

func TestVoiceHandshakeRequiresBothInputsAndEndpoint(t *testing.T) {
	p := newTestPlayer()
	ctx := context.Background()

	// Server update with a nil endpoint: no attempt, no error.
	if err := p.HandleVoiceServerUpdate(ctx, lavalink.VoiceServerPayload{Token: "t", GuildID: p.guildID, Endpoint: nil}); err != nil {
		t.Fatalf("server update with nil endpoint should not error, got %v", err)
	}
	if p.Connected() {
		t.Fatal("player should not be connected before voice state arrives")
	}

	// Voice state with a non-nil channel, but endpoint still nil: no
	// attempt yet (server.Endpoint is nil), so still no error.
	ch := "999999999999999999"
	if err := p.HandleVoiceStateUpdate(ctx, lavalink.VoiceStatePayload{GuildID: p.guildID, SessionID: "sess", ChannelID: &ch}); err != nil {
		t.Fatalf("voice state with pending nil-endpoint server should not error, got %v", err)
	}

	// Now supply a real endpoint: both inputs present, endpoint non-nil
	// -> the handshake attempts the REST call, which fails because the
	// node isn't connected.
	endpoint := "voice.example.com"
	err := p.HandleVoiceServerUpdate(ctx, lavalink.VoiceServerPayload{Token: "t", GuildID: p.guildID, Endpoint: &endpoint})
	if !errors.Is(err, lavalink.ErrNodeNotReady) {
		t.Fatalf("handshake completion should attempt REST and fail with ErrNodeNotReady, got %v", err)
	}
}

func TestVoiceStateNilChannelClearsWithoutRest(t *testing.T) {
	p := newTestPlayer()
	ctx := context.Background()

	if err := p.HandleVoiceStateUpdate(ctx, lavalink.VoiceStatePayload{GuildID: p.guildID, SessionID: "sess", ChannelID: nil}); err != nil {
		t.Fatalf("voice state with nil channel should not error, got %v", err)
	}
	if p.Connected() {
		t.Fatal("player should not be connected after a nil-channel voice state")
	}
}

func TestSeekRequiresCurrentTrack(t *testing.T) {
	p := newTestPlayer()
	if err := p.Seek(context.Background(), 1000); !errors.Is(err, lavalink.ErrNoTrackPlaying) {
		t.Fatalf("Seek with no track = %v, want ErrNoTrackPlaying", err)
	}
}

func TestSeekRejectsUnseekableTrack(t *testing.T) {
	p := newTestPlayer()
	p.mu.Lock()
	p.track = &lavalink.Track{Identifier: "x", IsSeekable: false}
	p.mu.Unlock()

	if err := p.Seek(context.Background(), 1000); err == nil {
		t.Fatal("Seek on unseekable track should error")
	}
}

func TestQueueDelegation(t *testing.T) {
	p := newTestPlayer()
	added := make(chan Event, 1)
	p.On(EventQueueAdd, func(e Event) { added <- e })

	track := lavalink.Track{Encoded: "enc-1", Identifier: "1"}
	p.AddTrack(track)

	if p.Queue().Len() != 1 {
		t.Fatalf("queue len after AddTrack = %d, want 1", p.Queue().Len())
	}
	select {
	case <-added:
	case <-time.After(time.Second):
		t.Fatal("queueAdd handler was not invoked")
	}

	removed := make(chan Event, 1)
	p.On(EventQueueRemove, func(e Event) { removed <- e })
	if _, err := p.RemoveTrack(0); err != nil {
		t.Fatalf("RemoveTrack failed: %v", err)
	}
	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("queueRemove handler was not invoked")
	}
}

func TestSkipOnEmptyQueueStopsAndEmitsQueueEnd(t *testing.T) {
	p := newTestPlayer()
	ended := make(chan Event, 1)
	p.On(EventQueueEnd, func(e Event) { ended <- e })

	advanced, err := p.Skip(context.Background())
	// Stop fails against a disconnected node; Skip should still surface
	// that error rather than silently swallowing it.
	if !errors.Is(err, lavalink.ErrNodeNotReady) {
		t.Fatalf("Skip on empty queue against a not-ready node = %v, want ErrNodeNotReady", err)
	}
	if advanced {
		t.Fatal("Skip on empty queue should report no advance")
	}
	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("queueEnd handler was not invoked")
	}
}

func TestSetLoopAcceptsStringAndEnum(t *testing.T) {
	p := newTestPlayer()

	if err := p.SetLoop("queue"); err != nil {
		t.Fatalf("SetLoop(\"queue\") failed: %v", err)
	}
	if p.Queue().LoopMode() != queue.LoopQueue {
		t.Fatalf("loop mode = %v, want LoopQueue", p.Queue().LoopMode())
	}

	if err := p.SetLoop(queue.LoopTrack); err != nil {
		t.Fatalf("SetLoop(LoopTrack) failed: %v", err)
	}
	if p.Queue().LoopMode() != queue.LoopTrack {
		t.Fatalf("loop mode = %v, want LoopTrack", p.Queue().LoopMode())
	}

	if err := p.SetLoop(42); err == nil {
		t.Fatal("SetLoop with unsupported type should error")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	p := newTestPlayer()
	destroyed := make(chan Event, 2)
	p.On(EventDestroy, func(e Event) { destroyed <- e })

	p.Destroy(context.Background())
	p.Destroy(context.Background())

	if !p.Destroyed() {
		t.Fatal("player should be destroyed")
	}
	select {
	case <-destroyed:
	case <-time.After(time.Second):
		t.Fatal("destroy handler was not invoked")
	}
	if len(destroyed) != 0 {
		t.Fatalf("destroy event fired %d extra times, want exactly 1 in total", len(destroyed))
	}
}

func TestDestroyedPlayerRejectsOperations(t *testing.T) {
	p := newTestPlayer()
	p.Destroy(context.Background())

	if err := p.Pause(context.Background(), true); !errors.Is(err, lavalink.ErrPlayerNotFound) {
		t.Fatalf("Pause on destroyed player = %v, want ErrPlayerNotFound", err)
	}
	if err := p.SetVolume(context.Background(), 50); !errors.Is(err, lavalink.ErrPlayerNotFound) {
		t.Fatalf("SetVolume on destroyed player = %v, want ErrPlayerNotFound", err)
	}
	if _, err := p.Skip(context.Background()); !errors.Is(err, lavalink.ErrPlayerNotFound) {
		t.Fatalf("Skip on destroyed player = %v, want ErrPlayerNotFound", err)
	}

	p.AddTrack(lavalink.Track{Encoded: "enc", Identifier: "1"})
	if p.queue.Len() != 0 {
		t.Fatal("AddTrack on destroyed player should be a no-op")
	}
}

func TestTrackEndAutoplayAdvancesQueue(t *testing.T) {
	p := newTestPlayer()
	p.AddTrack(lavalink.Track{Encoded: "enc-2", Identifier: "2"})

	ended := make(chan Event, 1)
	p.On(EventTrackEnd, func(e Event) { ended <- e })

	track := lavalink.Track{Encoded: "enc-1", Identifier: "1"}
	p.HandleNodeEvent(context.Background(), lavalink.EventFrame{
		Op: "event", GuildID: p.guildID, Type: lavalink.EventTrackEnd,
		Track: &track, Reason: string(lavalink.TrackEndFinished),
	})

	if p.Playing() {
		t.Fatal("player should not report playing right after trackEnd")
	}
	select {
	case e := <-ended:
		if e.Reason != lavalink.TrackEndFinished {
			t.Fatalf("trackEnd reason = %v, want TrackEndFinished", e.Reason)
		}
	case <-time.After(time.Second):
		t.Fatal("trackEnd handler was not invoked")
	}
	// Autoplay polled the queued track off into p.queue.Poll, which the
	// not-ready node's REST call then fails against; the queue still
	// advances locally regardless of the REST outcome.
	if p.Queue().Len() != 0 {
		t.Fatalf("queue len after autoplay advance = %d, want 0", p.Queue().Len())
	}
}

func TestTrackEndWithoutAutoplayDoesNotAdvance(t *testing.T) {
	p := newTestPlayer()
	p.SetAutoplay(false)
	p.AddTrack(lavalink.Track{Encoded: "enc-2", Identifier: "2"})

	track := lavalink.Track{Encoded: "enc-1", Identifier: "1"}
	p.HandleNodeEvent(context.Background(), lavalink.EventFrame{
		Op: "event", GuildID: p.guildID, Type: lavalink.EventTrackEnd,
		Track: &track, Reason: string(lavalink.TrackEndFinished),
	})

	if p.Queue().Len() != 1 {
		t.Fatalf("queue len with autoplay disabled = %d, want 1 (untouched)", p.Queue().Len())
	}
}

func TestTrackEndStoppedReasonDoesNotAutoplay(t *testing.T) {
	p := newTestPlayer()
	p.AddTrack(lavalink.Track{Encoded: "enc-2", Identifier: "2"})

	track := lavalink.Track{Encoded: "enc-1", Identifier: "1"}
	p.HandleNodeEvent(context.Background(), lavalink.EventFrame{
		Op: "event", GuildID: p.guildID, Type: lavalink.EventTrackEnd,
		Track: &track, Reason: string(lavalink.TrackEndStopped),
	})

	if p.Queue().Len() != 1 {
		t.Fatalf("queue len after a stopped-reason trackEnd = %d, want 1 (untouched)", p.Queue().Len())
	}
}

func TestHandlePlayerUpdateTracksPositionAndConnected(t *testing.T) {
	p := newTestPlayer()
	updated := make(chan Event, 1)
	p.On(EventPlayerUpdate, func(e Event) { updated <- e })

	p.HandlePlayerUpdate(lavalink.PlayerState{Time: 1000, Position: 4200, Connected: true})

	if p.Position() != 4200 {
		t.Fatalf("position = %d, want 4200", p.Position())
	}
	if !p.Connected() {
		t.Fatal("player should report connected after a playerUpdate with Connected=true")
	}
	select {
	case e := <-updated:
		if e.State.Position != 4200 {
			t.Fatalf("playerUpdate event position = %d, want 4200", e.State.Position)
		}
	case <-time.After(time.Second):
		t.Fatal("playerUpdate handler was not invoked")
	}
}

func TestWebSocketClosedMarksDisconnected(t *testing.T) {
	p := newTestPlayer()
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()

	closed := make(chan Event, 1)
	p.On(EventWebSocketClosed, func(e Event) { closed <- e })

	p.HandleNodeEvent(context.Background(), lavalink.EventFrame{
		Op: "event", GuildID: p.guildID, Type: lavalink.EventWebSocketClosed,
		Code: 4006, CloseMsg: "Session no longer valid", ByRemote: true,
	})

	if p.Connected() {
		t.Fatal("player should be disconnected after a websocketClosed event")
	}
	select {
	case e := <-closed:
		if e.Code != 4006 || !e.ByRemote {
			t.Fatalf("websocketClosed event = %+v, want code 4006, byRemote true", e)
		}
	case <-time.After(time.Second):
		t.Fatal("websocketClosed handler was not invoked")
	}
}

func TestClearFiltersIssuesPlayerUpdate(t *testing.T) {
	p := newTestPlayer()
	if err := p.ClearFilters(context.Background()); !errors.Is(err, lavalink.ErrNodeNotReady) {
		t.Fatalf("ClearFilters against a not-ready node = %v, want ErrNodeNotReady", err)
	}
}

func TestTrackStartReconciliation(t *testing.T) {
	p := newTestPlayer()
	started := make(chan Event, 1)
	p.On(EventTrackStart, func(e Event) { started <- e })

	track := lavalink.Track{Encoded: "enc-1", Identifier: "1"}
	p.HandleNodeEvent(context.Background(), lavalink.EventFrame{
		Op: "event", GuildID: p.guildID, Type: lavalink.EventTrackStart, Track: &track,
	})

	if !p.Playing() {
		t.Fatal("player should be playing after trackStart")
	}
	if p.Track() == nil || p.Track().Identifier != "1" {
		t.Fatalf("player track = %v, want identifier 1", p.Track())
	}
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("trackStart handler was not invoked")
	}
}
