package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/tomato/internal/store"
)

// ToCSV writes one row per day with its run and pause counters.
func ToCSV(days []store.DayCount, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Header
	if err := w.Write([]string{"Date", "Day", "Run", "Pause"}); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Date.Format("2006-01-02"),
			d.Date.Format("Mon"),
			strconv.Itoa(d.Run),
			strconv.Itoa(d.Pause),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
