package progress

import (
	"encoding/json"
	"fmt"

	"github.com/example/vocatrain/pkg/models"
)

// legacyState is the version-1 document shape: word sets only, camelCase
// keys, no sentence tracking and no usage buckets.
type legacyState struct {
	LearnedWords  []int  `json:"learnedWords"`
	ReviewWords   []int  `json:"reviewWords"`
	Streak        int    `json:"streak"`
	LastStudyDate string `json:"lastStudyDate"`
	TotalTime     int    `json:"totalTime"`
}

// loadState reads the persisted progress document and migrates it to the
// current schema. A missing document yields a fresh empty state.
func loadState(docs Documents) (*models.ProgressState, error) {
	var raw json.RawMessage
	found, err := docs.Get(progressKey, &raw)
	if err != nil {
		return nil, err
	}
	if !found {
		return models.NewProgressState(), nil
	}

	var versioned struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(raw, &versioned); err != nil {
		return nil, fmt.Errorf("failed to read schema version: %v", err)
	}
	return migrate(raw, versioned.SchemaVersion)
}

// migrate converts a raw progress document at fromVersion to the current
// shape. Pure: no I/O, run once at load time. Saves always write the
// current version tag, so migration only ever moves forward.
func migrate(raw json.RawMessage, fromVersion int) (*models.ProgressState, error) {
	switch fromVersion {
	case models.ProgressSchemaVersion:
		state := models.NewProgressState()
		if err := json.Unmarshal(raw, state); err != nil {
			return nil, fmt.Errorf("failed to decode progress document: %v", err)
		}
		if state.UsageTracking == nil {
			state.UsageTracking = make(map[string]map[string]int)
		}
		return state, nil
	case 0, 1:
		// Version 1 predates the version tag, so both 0 and 1 mean legacy
		var legacy legacyState
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("failed to decode legacy progress document: %v", err)
		}
		state := models.NewProgressState()
		state.LearnedWords = legacy.LearnedWords
		state.ReviewWords = legacy.ReviewWords
		state.StreakCount = legacy.Streak
		state.LastStudyDate = legacy.LastStudyDate
		state.TotalStudyTime = legacy.TotalTime
		return state, nil
	default:
		return nil, fmt.Errorf("unknown progress schema version %d", fromVersion)
	}
}
