package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	runners      atomic.Int64
	lastPollUnix atomic.Int64 // unix seconds
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// AddRunners — +1 на старте стратегии, -1 на выходе.
func (s *State) AddRunners(delta int64) { s.runners.Add(delta) }
func (s *State) Runners() int64         { return s.runners.Load() }

func (s *State) TouchPoll(t time.Time) { s.lastPollUnix.Store(t.Unix()) }
func (s *State) LastPoll() time.Time {
	u := s.lastPollUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
