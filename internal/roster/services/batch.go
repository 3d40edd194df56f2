package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go-guildsync/pkg/config"
	"go-guildsync/pkg/swgoh"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultChunkSize limits players per request; each player can take several seconds upstream
	DefaultChunkSize   = 5
	// DefaultMaxInFlight limits concurrent player requests
	DefaultMaxInFlight = 3

	chunkFetchLabel  = "Error fetching members"
	deserializeLabel = "Error deserializing JSON"
)

// PlayerSource fetches player detail for a group of ally codes
type PlayerSource interface {
	Players(ctx context.Context, codes []swgoh.AllyCode) ([]swgoh.PlayerInfo, error)
}

// ErrorReporter receives non-fatal failures
type ErrorReporter interface {
	ReportError(ctx context.Context, message string, err error)
}

// ChunkError is a failed chunk of a batch fetch
type ChunkError struct {
	Index int
	Codes []swgoh.AllyCode
	Label string
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s (chunk %d, %d players): %v", e.Label, e.Index, len(e.Codes), e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// BatchStats describes one batch fetch
type BatchStats struct {
	Requested    int
	Received     int
	Chunks       int
	FailedChunks int
	Duration     time.Duration
}

// BatchFetcher fetches many players in bounded, concurrent chunks
type BatchFetcher struct {
	source      PlayerSource
	reporter    ErrorReporter
	chunkSize   int
	maxInFlight int
	tracer      trace.Tracer
}

// NewBatchFetcher creates a fetcher. Non-positive sizes use the defaults.
func NewBatchFetcher(source PlayerSource, reporter ErrorReporter, chunkSize, maxInFlight int) *BatchFetcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	f := &BatchFetcher{
		source:      source,
		reporter:    reporter,
		chunkSize:   chunkSize,
		maxInFlight: maxInFlight,
	}
	if config.GetBoolEnv("ENABLE_TELEMETRY", true) {
		f.tracer = otel.Tracer("go-guildsync/roster")
	}
	return f
}

// CreateBatches splits codes into order-preserving chunks of at most size
func CreateBatches(codes []swgoh.AllyCode, size int) [][]swgoh.AllyCode {
	var batches [][]swgoh.AllyCode
	for i := 0; i < len(codes); i += size {
		end := i + size
		if end > len(codes) {
			end = len(codes)
		}
		batches = append(batches, codes[i:end])
	}
	return batches
}

// FetchPlayers fetches every code. It succeeds only when exactly as many
// records arrive as were requested; otherwise partial results are discarded
// and an *swgoh.IncompleteBatchError is returned. Failed chunks are reported, not retried.
func (f *BatchFetcher) FetchPlayers(ctx context.Context, allyCodes []swgoh.AllyCode) ([]swgoh.PlayerInfo, *BatchStats, error) {
	start := time.Now()
	stats := &BatchStats{Requested: len(allyCodes)}
	if len(allyCodes) == 0 {
		return []swgoh.PlayerInfo{}, stats, nil
	}

	var span trace.Span
	if f.tracer != nil {
		ctx, span = f.tracer.Start(ctx, "roster.FetchPlayers",
			trace.WithAttributes(attribute.Int("roster.requested", len(allyCodes))))
		defer span.End()
	}

	batches := CreateBatches(allyCodes, f.chunkSize)
	stats.Chunks = len(batches)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		collected = make([]swgoh.PlayerInfo, 0, len(allyCodes))
		failed    int
	)
	semaphore := make(chan struct{}, f.maxInFlight)

	for i, batch := range batches {
		wg.Add(1)
		go func(index int, chunk []swgoh.AllyCode) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			slog.DebugContext(ctx, "Fetching player chunk", "chunk", index+1, "of", len(batches), "first", chunk[0].String())

			players, err := f.source.Players(ctx, chunk)
			if err != nil {
				f.reportChunk(ctx, index, chunk, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			collected = append(collected, players...)
			mu.Unlock()

			slog.DebugContext(ctx, "Finished player chunk", "chunk", index+1, "received", len(players))
		}(i, batch)
	}

	wg.Wait()

	stats.Received = len(collected)
	stats.FailedChunks = failed
	stats.Duration = time.Since(start)

	slog.InfoContext(ctx, "Player batch fetch finished",
		"requested", stats.Requested,
		"received", stats.Received,
		"chunks", stats.Chunks,
		"failed_chunks", stats.FailedChunks,
		"duration", stats.Duration,
	)

	if stats.Received != stats.Requested {
		err := &swgoh.IncompleteBatchError{Requested: stats.Requested, Received: stats.Received}
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, stats, err
	}

	orderByRequest(collected, allyCodes)
	return collected, stats, nil
}

// orderByRequest sorts players into the order their codes were requested
func orderByRequest(players []swgoh.PlayerInfo, codes []swgoh.AllyCode) {
	position := make(map[swgoh.AllyCode]int, len(codes))
	for i, c := range codes {
		if _, seen := position[c]; !seen {
			position[c] = i
		}
	}
	sort.SliceStable(players, func(i, j int) bool {
		return position[players[i].AllyCode] < position[players[j].AllyCode]
	})
}

func (f *BatchFetcher) reportChunk(ctx context.Context, index int, chunk []swgoh.AllyCode, err error) {
	label := chunkFetchLabel
	var de *swgoh.DeserializationError
	if errors.As(err, &de) {
		label = deserializeLabel
	}
	ce := &ChunkError{Index: index, Codes: chunk, Label: label, Err: err}

	if f.reporter != nil {
		f.reporter.ReportError(ctx, label, ce)
		return
	}
	slog.ErrorContext(ctx, label, "chunk", index, "error", err)
}
