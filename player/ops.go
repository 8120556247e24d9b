/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package player

import (
	"context"
	"fmt"

	"github.com/friendsincode/rias/lavalink"
	"github.com/friendsincode/rias/queue"
)

// PlayOptions configures a Play call. Track is either a string (an
// already-encoded track blob) or a lavalink.Track/*lavalink.Track whose
// Encoded field is used.
type PlayOptions struct {
	Track     any
	Position  *int64
	EndTime   *int64
	Volume    *int
	Paused    *bool
	NoReplace bool
}

func encodedTrackOf(track any) (string, error) {
	switch t := track.(type) {
	case string:
		return t, nil
	case lavalink.Track:
		return t.Encoded, nil
	case *lavalink.Track:
		return t.Encoded, nil
	default:
		return "", fmt.Errorf("player: unsupported track type %T", track)
	}
}

// Play resolves opts.Track to an encoded blob, validates the supplied
// optional fields, and PATCHes the player.
func (p *Player) Play(ctx context.Context, opts PlayOptions) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	encoded, err := encodedTrackOf(opts.Track)
	if err != nil {
		return err
	}

	update := lavalink.NewPlayerUpdate().WithEncodedTrack(encoded)

	if opts.Position != nil {
		if err := lavalink.ValidatePosition(*opts.Position); err != nil {
			return err
		}
		update = update.WithPosition(*opts.Position)
	}
	if opts.EndTime != nil {
		update = update.WithEndTime(*opts.EndTime)
	}
	if opts.Volume != nil {
		if err := lavalink.ValidateVolume(*opts.Volume); err != nil {
			return err
		}
		update = update.WithVolume(*opts.Volume)
	}
	if opts.Paused != nil {
		update = update.WithPaused(*opts.Paused)
	}

	if err := p.node.UpdatePlayer(ctx, p.guildID, update, opts.NoReplace); err != nil {
		p.emitError(err)
		return err
	}

	p.mu.Lock()
	p.playing = true
	if opts.Volume != nil {
		p.volume = *opts.Volume
	}
	if opts.Paused != nil {
		p.paused = *opts.Paused
	}
	p.mu.Unlock()
	p.refreshMetrics()
	return nil
}

// Stop clears the track with an explicit {"encodedTrack":null} PATCH.
func (p *Player) Stop(ctx context.Context) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	update := lavalink.NewPlayerUpdate().WithNoTrack()
	if err := p.node.UpdatePlayer(ctx, p.guildID, update, false); err != nil {
		p.emitError(err)
		return err
	}

	p.mu.Lock()
	p.track = nil
	p.playing = false
	p.mu.Unlock()
	p.refreshMetrics()
	return nil
}

// Pause sets the player's paused state.
func (p *Player) Pause(ctx context.Context, state bool) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	update := lavalink.NewPlayerUpdate().WithPaused(state)
	if err := p.node.UpdatePlayer(ctx, p.guildID, update, false); err != nil {
		p.emitError(err)
		return err
	}

	p.mu.Lock()
	p.paused = state
	p.mu.Unlock()
	return nil
}

// Resume is Pause(false).
func (p *Player) Resume(ctx context.Context) error {
	return p.Pause(ctx, false)
}

// Seek requires a current, seekable track, then PATCHes the position.
func (p *Player) Seek(ctx context.Context, positionMs int64) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	p.mu.Lock()
	track := p.track
	p.mu.Unlock()

	if track == nil {
		return lavalink.ErrNoTrackPlaying
	}
	if !track.IsSeekable {
		return fmt.Errorf("player: track %q is not seekable", track.Identifier)
	}
	if err := lavalink.ValidatePosition(positionMs); err != nil {
		return err
	}

	update := lavalink.NewPlayerUpdate().WithPosition(positionMs)
	if err := p.node.UpdatePlayer(ctx, p.guildID, update, false); err != nil {
		p.emitError(err)
		return err
	}

	p.mu.Lock()
	p.positionMs = positionMs
	p.mu.Unlock()
	return nil
}

// SetVolume validates and PATCHes a new volume.
func (p *Player) SetVolume(ctx context.Context, volume int) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	if err := lavalink.ValidateVolume(volume); err != nil {
		return err
	}

	update := lavalink.NewPlayerUpdate().WithVolume(volume)
	if err := p.node.UpdatePlayer(ctx, p.guildID, update, false); err != nil {
		p.emitError(err)
		return err
	}

	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	return nil
}

// SetFilters PATCHes a new filter chain.
func (p *Player) SetFilters(ctx context.Context, filters lavalink.Filters) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	update := lavalink.NewPlayerUpdate().WithFilters(filters)
	if err := p.node.UpdatePlayer(ctx, p.guildID, update, false); err != nil {
		p.emitError(err)
		return err
	}
	return nil
}

// ClearFilters resets every filter using the canonical empty record.
func (p *Player) ClearFilters(ctx context.Context) error {
	return p.SetFilters(ctx, lavalink.Empty())
}

// AddTrack appends a track to the queue and emits queueAdd. A no-op
// once the player is destroyed.
func (p *Player) AddTrack(track lavalink.Track) {
	if p.Destroyed() {
		return
	}
	p.queue.Add(track)
	p.bus.Emit(string(EventQueueAdd), Event{GuildID: p.guildID, Track: &track})
	p.refreshMetrics()
}

// AddTracks appends multiple tracks to the queue and emits queueAdd. A
// no-op once the player is destroyed.
func (p *Player) AddTracks(tracks []lavalink.Track) {
	if p.Destroyed() {
		return
	}
	p.queue.AddMany(tracks)
	p.bus.Emit(string(EventQueueAdd), Event{GuildID: p.guildID})
	p.refreshMetrics()
}

// RemoveTrack removes the queued track at index i and emits queueRemove.
func (p *Player) RemoveTrack(i int) (lavalink.Track, error) {
	if err := p.checkDestroyed(); err != nil {
		return lavalink.Track{}, err
	}
	t, err := p.queue.Remove(i)
	if err != nil {
		return lavalink.Track{}, err
	}
	p.bus.Emit(string(EventQueueRemove), Event{GuildID: p.guildID, Track: &t})
	p.refreshMetrics()
	return t, nil
}

// ClearQueue empties the queue and emits queueClear. A no-op once the
// player is destroyed.
func (p *Player) ClearQueue() {
	if p.Destroyed() {
		return
	}
	p.queue.Clear()
	p.bus.Emit(string(EventQueueClear), Event{GuildID: p.guildID})
	p.refreshMetrics()
}

// ShuffleQueue performs a uniform shuffle and emits queueShuffle. A
// no-op once the player is destroyed.
func (p *Player) ShuffleQueue() {
	if p.Destroyed() {
		return
	}
	p.queue.Shuffle()
	p.bus.Emit(string(EventQueueShuffle), Event{GuildID: p.guildID})
}

// SmartShuffleQueue performs the author-balanced shuffle and emits
// queueShuffle. A no-op once the player is destroyed.
func (p *Player) SmartShuffleQueue() {
	if p.Destroyed() {
		return
	}
	p.queue.SmartShuffle()
	p.bus.Emit(string(EventQueueShuffle), Event{GuildID: p.guildID})
}

// Skip advances to the next queued track. If the queue is empty it
// stops playback, emits queueEnd, and returns false; otherwise it polls
// the queue, plays the result, and returns true.
func (p *Player) Skip(ctx context.Context) (bool, error) {
	if err := p.checkDestroyed(); err != nil {
		return false, err
	}
	if p.queue.IsEmpty() {
		err := p.Stop(ctx)
		p.bus.Emit(string(EventQueueEnd), Event{GuildID: p.guildID})
		return false, err
	}

	next := p.queue.Poll()
	if err := p.Play(ctx, PlayOptions{Track: *next}); err != nil {
		return false, err
	}
	p.mu.Lock()
	p.track = next
	p.mu.Unlock()
	return true, nil
}

// SetLoop forwards to the queue's loop mode, accepting either a
// queue.LoopMode or its string form ("none"/"track"/"queue").
func (p *Player) SetLoop(mode any) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	switch m := mode.(type) {
	case queue.LoopMode:
		p.queue.SetLoopMode(m)
		return nil
	case string:
		parsed, err := queue.ParseLoopMode(m)
		if err != nil {
			return err
		}
		p.queue.SetLoopMode(parsed)
		return nil
	default:
		return fmt.Errorf("player: unsupported loop mode type %T", mode)
	}
}

// Destroy is an idempotent latch: it DELETEs the player (swallowing
// errors), emits destroy, and clears track/queue/flags.
func (p *Player) Destroy(ctx context.Context) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.mu.Unlock()

	_ = p.node.DestroyPlayer(ctx, p.guildID)

	p.bus.Emit(string(EventDestroy), Event{GuildID: p.guildID})
	p.bus.Close()

	p.mu.Lock()
	p.track = nil
	p.playing = false
	p.paused = false
	p.mu.Unlock()
	p.queue.Clear()
}
