package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go-guildsync/internal/roster/models"
	"go-guildsync/pkg/swgoh"
)

// ErrDataUnavailable is returned when exporting before a complete guild pull
var ErrDataUnavailable = errors.New("Guild data has not yet been successfully retrieved.")

// SnapshotFile is the on-disk exchange format for a guild and its members
type SnapshotFile struct {
	Guild   *swgoh.GuildInfo   `json:"guild"`
	Players []swgoh.PlayerInfo `json:"players"`
}

// ExportSnapshot writes the guild and member records of a complete snapshot
func ExportSnapshot(w io.Writer, snap *models.RosterSnapshot) error {
	if !snap.IsAllDataAvailable() {
		return ErrDataUnavailable
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(SnapshotFile{Guild: snap.Guild, Players: snap.Players})
}

// DecodeSnapshot reads a snapshot file. Both the guild and the player list must be present.
func DecodeSnapshot(r io.Reader) (*SnapshotFile, error) {
	var file SnapshotFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, &swgoh.DeserializationError{Op: "Import", Err: err}
	}
	if file.Guild == nil {
		return nil, &swgoh.ValidationError{Field: "guild", Message: "Snapshot does not contain a guild."}
	}
	if file.Players == nil {
		return nil, &swgoh.ValidationError{Field: "players", Message: "Snapshot does not contain any players."}
	}
	return &file, nil
}

// Export writes the current snapshot
func (s *SyncService) Export(w io.Writer) error {
	return ExportSnapshot(w, s.snapshot.Load())
}

// ImportFrom decodes a snapshot file and replaces the current state with it
func (s *SyncService) ImportFrom(ctx context.Context, r io.Reader) (*models.RosterSnapshot, error) {
	file, err := DecodeSnapshot(r)
	if err != nil {
		return nil, err
	}
	snap, err := s.Import(ctx, file.Guild, file.Players)
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	return snap, nil
}
