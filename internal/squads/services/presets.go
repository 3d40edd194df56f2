package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go-guildsync/internal/squads/models"
)

// PresetFileName is the default preset file inside the data directory
const PresetFileName = "presets.csv"

// LoadPresets reads "name,unit1,...,unit5" rows. Text after '#' is a comment.
// Blank lines and short rows are skipped, as is any row with a blank field,
// trailing fields included.
func LoadPresets(r io.Reader) ([]models.SquadPreset, error) {
	var presets []models.SquadPreset

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < models.SquadSize+1 {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if hasBlank(fields) {
			continue
		}

		preset := models.SquadPreset{Name: fields[0]}
		copy(preset.Units[:], fields[1:models.SquadSize+1])
		presets = append(presets, preset)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return presets, nil
}

// LoadPresetFile reads presets from path
func LoadPresetFile(path string) ([]models.SquadPreset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets: %w", err)
	}
	defer f.Close()
	return LoadPresets(f)
}

func hasBlank(fields []string) bool {
	for _, f := range fields {
		if f == "" {
			return true
		}
	}
	return false
}
