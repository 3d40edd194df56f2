package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	eventmodels "go-guildsync/internal/events/models"
	"go-guildsync/pkg/swgoh"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	errs     []error
	events   []eventmodels.Event
}

func (r *recordingNotifier) ReportError(ctx context.Context, message string, err error) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *recordingNotifier) Publish(ev eventmodels.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingNotifier) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.Type == eventmodels.EventStateChanged {
			out = append(out, ev.State)
		}
	}
	return out
}

func (r *recordingNotifier) count(t eventmodels.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// fakePlayers serves players by ally code and records every chunk it sees
type fakePlayers struct {
	players map[swgoh.AllyCode]swgoh.PlayerInfo
	fail    map[swgoh.AllyCode]error
	delay   time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu     sync.Mutex
	chunks [][]swgoh.AllyCode
}

func newFakePlayers(infos ...swgoh.PlayerInfo) *fakePlayers {
	f := &fakePlayers{
		players: make(map[swgoh.AllyCode]swgoh.PlayerInfo),
		fail:    make(map[swgoh.AllyCode]error),
	}
	for _, p := range infos {
		f.players[p.AllyCode] = p
	}
	return f
}

func (f *fakePlayers) Players(ctx context.Context, codes []swgoh.AllyCode) ([]swgoh.PlayerInfo, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.chunks = append(f.chunks, append([]swgoh.AllyCode(nil), codes...))
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	var out []swgoh.PlayerInfo
	for _, c := range codes {
		if err, ok := f.fail[c]; ok {
			return nil, err
		}
		if p, ok := f.players[c]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlayers) chunkSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, 0, len(f.chunks))
	for _, c := range f.chunks {
		sizes = append(sizes, len(c))
	}
	return sizes
}

func (f *fakePlayers) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks)
}

var errUpstream = errors.New("upstream unavailable")

func testCode(i int) swgoh.AllyCode {
	return swgoh.AllyCode(100000000 + i)
}

func testPlayer(i int, updated time.Time) swgoh.PlayerInfo {
	return swgoh.PlayerInfo{
		Name:     "Player" + string(rune('A'+i)),
		Level:    85,
		AllyCode: testCode(i),
		Updated:  swgoh.NewTimestamp(updated),
		Stats: []swgoh.PlayerStat{
			{Name: StatGalacticPower, Value: 100000},
			{Name: StatGalacticPowerCharacters, Value: 60000},
			{Name: StatGalacticPowerShips, Value: 40000},
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
