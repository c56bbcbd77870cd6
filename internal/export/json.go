package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tomato/internal/store"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	TotalRun   int       `json:"total_run"`
	TotalPause int       `json:"total_pause"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date  string `json:"date"`
	Key   string `json:"key"`
	Run   int    `json:"run"`
	Pause int    `json:"pause"`
}

func ToJSON(days []store.DayCount, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
		Days:       []jsonDay{},
	}

	for _, d := range days {
		export.TotalRun += d.Run
		export.TotalPause += d.Pause
		export.Days = append(export.Days, jsonDay{
			Date:  d.Date.Format("2006-01-02"),
			Key:   d.Key,
			Run:   d.Run,
			Pause: d.Pause,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
