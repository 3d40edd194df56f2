package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-guildsync/pkg/swgoh"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBatches(t *testing.T) {
	tests := []struct {
		name  string
		count int
		size  int
		want  []int
	}{
		{"empty", 0, 5, nil},
		{"single partial chunk", 3, 5, []int{3}},
		{"exact multiple", 10, 5, []int{5, 5}},
		{"thirteen codes", 13, 5, []int{5, 5, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make([]swgoh.AllyCode, tt.count)
			for i := range codes {
				codes[i] = testCode(i)
			}

			var sizes []int
			var flat []swgoh.AllyCode
			for _, b := range CreateBatches(codes, tt.size) {
				sizes = append(sizes, len(b))
				flat = append(flat, b...)
			}
			assert.Equal(t, tt.want, sizes)
			if tt.count > 0 {
				assert.Equal(t, codes, flat, "chunks preserve order")
			}
		})
	}
}

func TestFetchPlayersChunksAndBoundsConcurrency(t *testing.T) {
	now := time.Now()
	var infos []swgoh.PlayerInfo
	var codes []swgoh.AllyCode
	for i := 0; i < 13; i++ {
		infos = append(infos, testPlayer(i, now))
		codes = append(codes, testCode(i))
	}
	src := newFakePlayers(infos...)
	src.delay = 30 * time.Millisecond

	fetcher := NewBatchFetcher(src, &recordingNotifier{}, 0, 0)
	players, stats, err := fetcher.FetchPlayers(context.Background(), codes)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{5, 5, 3}, src.chunkSizes())
	assert.LessOrEqual(t, src.maxInFlight.Load(), int32(DefaultMaxInFlight))
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 13, stats.Received)
	assert.Zero(t, stats.FailedChunks)

	require.Len(t, players, 13)
	for i, p := range players {
		assert.Equal(t, codes[i], p.AllyCode, "results follow request order")
	}
}

func TestFetchPlayersChunkFailureIsAllOrNothing(t *testing.T) {
	now := time.Now()
	var infos []swgoh.PlayerInfo
	var codes []swgoh.AllyCode
	for i := 0; i < 12; i++ {
		infos = append(infos, testPlayer(i, now))
		codes = append(codes, testCode(i))
	}

	tests := []struct {
		name      string
		failErr   error
		wantLabel string
	}{
		{"transport failure", errUpstream, chunkFetchLabel},
		{"malformed body", &swgoh.DeserializationError{Op: "player", Err: errors.New("bad json")}, deserializeLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakePlayers(infos...)
			src.fail[testCode(7)] = tt.failErr
			rep := &recordingNotifier{}

			players, stats, err := NewBatchFetcher(src, rep, 5, 3).FetchPlayers(context.Background(), codes)

			var incomplete *swgoh.IncompleteBatchError
			require.ErrorAs(t, err, &incomplete)
			assert.Equal(t, 12, incomplete.Requested)
			assert.Equal(t, 7, incomplete.Received)
			assert.Nil(t, players)
			assert.Equal(t, 1, stats.FailedChunks)
			assert.Equal(t, 3, src.calls(), "failed chunks are not retried")

			require.Len(t, rep.messages, 1)
			assert.Equal(t, tt.wantLabel, rep.messages[0])
			var ce *ChunkError
			require.ErrorAs(t, rep.errs[0], &ce)
			assert.Equal(t, 1, ce.Index)
			assert.Len(t, ce.Codes, 5)
		})
	}
}

func TestFetchPlayersShortResponse(t *testing.T) {
	t.Setenv("ENABLE_TELEMETRY", "true")
	now := time.Now()
	// the upstream silently omits testCode(2)
	src := newFakePlayers(testPlayer(0, now), testPlayer(1, now))
	codes := []swgoh.AllyCode{testCode(0), testCode(1), testCode(2)}

	fetcher := NewBatchFetcher(src, nil, 5, 3)
	require.NotNil(t, fetcher.tracer, "the failed batch is recorded on a span")
	_, _, err := fetcher.FetchPlayers(context.Background(), codes)

	var incomplete *swgoh.IncompleteBatchError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 3, incomplete.Requested)
	assert.Equal(t, 2, incomplete.Received)
}

func TestFetchPlayersEmptyInput(t *testing.T) {
	src := newFakePlayers()
	players, stats, err := NewBatchFetcher(src, nil, 5, 3).FetchPlayers(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, players)
	assert.NotNil(t, players)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, src.calls())
}
