package registry

import (
	"time"

	"github.com/carverauto/pemfcradar/pkg/models"
)

// Row is one table line of the registry page.
type Row struct {
	Device models.Device `json:"device"`
	State  models.State  `json:"state"`
	Color  string        `json:"color"`
}

// Marker is one map pin. Only devices with finite coordinates get one.
type Marker struct {
	ID    int64        `json:"id"`
	Label string       `json:"label"`
	Lat   float64      `json:"lat"`
	Lng   float64      `json:"lng"`
	State models.State `json:"state"`
	Color string       `json:"color"`
}

// Counts are the status counters shown above the table.
type Counts struct {
	Total   int `json:"total"`
	Normal  int `json:"normal"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
}

// Snapshot is an immutable registry view. Replace it, never mutate it.
type Snapshot struct {
	ClientID   int64     `json:"clientId"`
	ClientName string    `json:"clientName"`
	Rows       []Row     `json:"rows"`
	Markers    []Marker  `json:"markers"`
	Counts     Counts    `json:"counts"`
	LoadedAt   time.Time `json:"loadedAt"`
}

type DeleteFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// DeleteReport summarizes a single or bulk delete.
type DeleteReport struct {
	Requested int             `json:"requested"`
	Succeeded []int64         `json:"succeeded"`
	Failed    []DeleteFailure `json:"failed"`
}

// Partial reports whether some, but not all, deletes failed.
func (d *DeleteReport) Partial() bool {
	return len(d.Failed) > 0 && len(d.Succeeded) > 0
}

// BuildSnapshot classifies each device by its worst subsystem state, counts
// the classes and derives the map markers.
func BuildSnapshot(clientID int64, clientName string, devices []models.Device, now time.Time) *Snapshot {
	snap := &Snapshot{
		ClientID:   clientID,
		ClientName: clientName,
		Rows:       make([]Row, 0, len(devices)),
		Markers:    make([]Marker, 0, len(devices)),
		LoadedAt:   now,
	}

	for i := range devices {
		d := devices[i]
		state := d.State()

		snap.Rows = append(snap.Rows, Row{Device: d, State: state, Color: state.Color()})
		snap.Counts.add(state)

		if d.HasLocation() {
			snap.Markers = append(snap.Markers, Marker{
				ID:    d.ID,
				Label: d.ModelName,
				Lat:   d.Lat.Value,
				Lng:   d.Lng.Value,
				State: state,
				Color: state.Color(),
			})
		}
	}

	return snap
}

func (c *Counts) add(s models.State) {
	c.Total++

	switch s {
	case models.StateError:
		c.Error++
	case models.StateWarning:
		c.Warning++
	case models.StateNormal, models.StateUnknown:
		c.Normal++
	}
}

func (s *Snapshot) without(ids map[int64]struct{}, now time.Time) *Snapshot {
	devices := make([]models.Device, 0, len(s.Rows))

	for i := range s.Rows {
		if _, gone := ids[s.Rows[i].Device.ID]; gone {
			continue
		}

		devices = append(devices, s.Rows[i].Device)
	}

	return BuildSnapshot(s.ClientID, s.ClientName, devices, now)
}
