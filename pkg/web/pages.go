package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/pemfcradar/pkg/chart"
	"github.com/carverauto/pemfcradar/pkg/dashboard"
	"github.com/carverauto/pemfcradar/pkg/models"
	"github.com/carverauto/pemfcradar/pkg/registry"
)

const (
	flashInfo  = "info"
	flashError = "error"
)

// Flash is a one-shot message carried through the post/redirect/get cycle.
type Flash struct {
	Message string
	Level   string
}

type legendEntry struct {
	Label string
	Color string
}

type registryPageData struct {
	Snapshot  *registry.Snapshot
	Flash     *Flash
	LoadError string
	Legend    []legendEntry
	Today     string
	PollMS    int64
}

type dashboardPageData struct {
	DeviceID       int64
	Snapshot       *dashboard.Snapshot
	Signals        []models.Signal
	ChartWidth     int
	ChartHeight    int
	PlotLeft       int
	PlotTop        int
	PlotWidth      int
	MaxZoom        float64
	Zoomable       bool
	ForecastWindow int
	PollMS         int64
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"coord": func(c models.Coordinate) string {
			if !c.Valid {
				return "-"
			}

			return strconv.FormatFloat(c.Value, 'f', 4, 64)
		},
		"featureColor": func(sig models.Signal, name string) string {
			return chart.FeatureColor(sig.Features(), name)
		},
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}

			return t.Format(time.TimeOnly)
		},
	}

	return template.New("pages").Funcs(funcs).ParseFS(webContent, "templates/*.html")
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer

	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Errorf("Rendering %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// registryPage fetches the device list on every visit. When the fetch
// fails the last loaded list, if any, is shown under an error banner.
func (s *Server) registryPage(w http.ResponseWriter, r *http.Request) {
	data := registryPageData{
		Flash:  flashFrom(r),
		Legend: stateLegend(),
		Today:  time.Now().Format(time.DateOnly),
		PollMS: s.opts.PollInterval.Milliseconds(),
	}

	snap, err := s.opts.Registry.Load(r.Context())
	if err != nil {
		data.LoadError = "The device list could not be loaded from the PEMFC API."
	}

	data.Snapshot = snap

	s.render(w, "registry.html", data)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectFlash(w, r, "Could not read the registration form.", flashError)

		return
	}

	req, err := parseRegistration(r.PostForm, s.opts.Registry.ClientID())
	if err == nil {
		_, err = s.opts.Registry.Register(r.Context(), req)
	}

	switch {
	case errors.Is(err, models.ErrInvalidRegistration):
		redirectFlash(w, r, err.Error(), flashError)
	case errors.Is(err, registry.ErrRegisterFailed):
		redirectFlash(w, r, "Registration failed: the PEMFC API rejected the request.", flashError)
	case errors.Is(err, registry.ErrLoadFailed):
		redirectFlash(w, r, fmt.Sprintf("Registered %s, but the device list could not be reloaded.", req.ModelName), flashError)
	case err != nil:
		redirectFlash(w, r, err.Error(), flashError)
	default:
		redirectFlash(w, r, fmt.Sprintf("Registered %s.", req.ModelName), flashInfo)
	}
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.opts.Registry.Reload(r.Context()); err != nil {
		redirectFlash(w, r, "Reload failed; showing the last loaded list.", flashError)

		return
	}

	redirectFlash(w, r, "Device list reloaded.", flashInfo)
}

func (s *Server) deleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	report := s.opts.Registry.Delete(r.Context(), id)
	msg, level := deleteFlash(report)

	redirectFlash(w, r, msg, level)
}

func (s *Server) deleteAll(w http.ResponseWriter, r *http.Request) {
	if s.opts.Registry.Snapshot() == nil {
		if _, err := s.opts.Registry.Load(r.Context()); err != nil {
			redirectFlash(w, r, "Nothing deleted: the device list could not be loaded.", flashError)

			return
		}
	}

	report := s.opts.Registry.DeleteAll(r.Context())
	msg, level := deleteFlash(report)

	redirectFlash(w, r, msg, level)
}

func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	snap, err := s.currentSnapshot(r, id)
	if errors.Is(err, dashboard.ErrClosed) {
		http.Error(w, "Service shutting down", http.StatusServiceUnavailable)

		return
	}

	left, top := chart.PlotOrigin()

	s.render(w, "dashboard.html", dashboardPageData{
		DeviceID:       id,
		Snapshot:       snap,
		Signals:        models.Signals,
		ChartWidth:     chart.Width,
		ChartHeight:    chart.Height,
		PlotLeft:       left,
		PlotTop:        top,
		PlotWidth:      chart.PlotWidth,
		MaxZoom:        s.maxZoom(),
		Zoomable:       s.maxZoom() > 1,
		ForecastWindow: s.opts.ForecastWindow,
		PollMS:         s.opts.PollInterval.Milliseconds(),
	})
}

// parseRegistration reads the registration form. Numeric fields that do
// not parse are reported the same way as out-of-range ones.
func parseRegistration(form url.Values, clientID int64) (*models.RegistrationRequest, error) {
	req := &models.RegistrationRequest{
		ModelName:        strings.TrimSpace(form.Get("modelName")),
		ClientID:         clientID,
		ManufacturedDate: strings.TrimSpace(form.Get("manufacturedDate")),
	}

	var err error

	if req.Lat, err = strconv.ParseFloat(strings.TrimSpace(form.Get("lat")), 64); err != nil {
		return nil, fmt.Errorf("%w: latitude must be a number", models.ErrInvalidRegistration)
	}

	if req.Lng, err = strconv.ParseFloat(strings.TrimSpace(form.Get("lng")), 64); err != nil {
		return nil, fmt.Errorf("%w: longitude must be a number", models.ErrInvalidRegistration)
	}

	return req, nil
}

func deleteFlash(report *registry.DeleteReport) (msg, level string) {
	if report.Requested == 0 {
		return "There were no devices to delete.", flashInfo
	}

	msg = fmt.Sprintf("Deleted %d of %d devices.", len(report.Succeeded), report.Requested)
	if len(report.Failed) == 0 {
		return msg, flashInfo
	}

	failed := make([]string, 0, len(report.Failed))
	for _, f := range report.Failed {
		failed = append(failed, "#"+strconv.FormatInt(f.ID, 10))
	}

	return msg + " Failed: " + strings.Join(failed, ", ") + ".", flashError
}

func redirectFlash(w http.ResponseWriter, r *http.Request, msg, level string) {
	q := url.Values{"flash": {msg}, "level": {level}}

	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func flashFrom(r *http.Request) *Flash {
	q := r.URL.Query()

	msg := q.Get("flash")
	if msg == "" {
		return nil
	}

	level := q.Get("level")
	if level != flashError {
		level = flashInfo
	}

	return &Flash{Message: msg, Level: level}
}

func stateLegend() []legendEntry {
	states := []models.State{models.StateNormal, models.StateWarning, models.StateError}
	out := make([]legendEntry, 0, len(states))

	for _, st := range states {
		out = append(out, legendEntry{Label: st.Label(), Color: st.Color()})
	}

	return out
}
