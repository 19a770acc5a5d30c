package rank

import "github.com/carverauto/pemfcradar/pkg/models"

const demoTotal = 50

type demoRow struct {
	id     int64
	errors int64
	rate   float64
}

var demoRows = map[string][]demoRow{
	"power":   {{3, 19, 0.38}, {1, 16, 0.32}, {2, 13, 0.26}},
	"voltage": {{3, 20, 0.40}, {1, 32, 0.64}, {2, 10, 0.20}},
}

var demoDates = map[int64]string{
	1: "2025-01-01",
	2: "2025-02-02",
	3: "2025-03-03",
}

// DemoEntries is the illustrative ranking shown when a group has no data.
// Groups without one return nil.
func DemoEntries(group string) []models.RankEntry {
	rows, ok := demoRows[group]
	if !ok {
		return nil
	}

	entries := make([]models.RankEntry, 0, len(rows))

	for _, r := range rows {
		entries = append(entries, models.RankEntry{
			Pemfc: models.Device{
				ID:               r.id,
				ClientID:         1,
				ModelName:        "testPemfc-001",
				ManufacturedDate: demoDates[r.id],
				Lat:              models.NewCoordinate(34.0),
				Lng:              models.NewCoordinate(127.0),
				PowerState:       models.StateNormal,
				VoltageState:     models.StateNormal,
				TemperatureState: models.StateNormal,
			},
			TotalCount: demoTotal,
			ErrorCount: r.errors,
			ErrorRate:  r.rate,
		})
	}

	return entries
}
