package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/carverauto/pemfcradar/pkg/chart"
	"github.com/carverauto/pemfcradar/pkg/dashboard"
	"github.com/carverauto/pemfcradar/pkg/heatmap"
	"github.com/carverauto/pemfcradar/pkg/models"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/gorilla/mux"
)

const (
	headerZoom = "X-Chart-Zoom"
	headerPan  = "X-Chart-Pan"
)

// chartQuery is the per-request chart state the page keeps client side.
type chartQuery struct {
	Transform chart.Transform
	Forecast  bool
	Refresh   bool
	Window    int
	X         float64
	HasX      bool
	Features  []string
}

// InspectResponse is the crosshair readout for one pointer position.
type InspectResponse struct {
	Crosshair *chart.Crosshair `json:"crosshair"`
	Transform chart.Transform  `json:"transform"`
}

// getRegistry re-fetches the device list and falls back to the last loaded
// one when the upstream is down.
func (s *Server) getRegistry(w http.ResponseWriter, r *http.Request) {
	snap, err := s.opts.Registry.Load(r.Context())
	if snap == nil {
		http.Error(w, "Device list unavailable", http.StatusBadGateway)

		return
	}

	if err != nil {
		s.log.Warnf("Serving the last loaded device list: %v", err)
	}

	s.writeJSON(w, snap)
}

func (s *Server) getRank(w http.ResponseWriter, r *http.Request) {
	board, err := s.opts.Ranks.Load(r.Context(), mux.Vars(r)["signal"])
	if board == nil {
		s.log.Warnf("Rank unavailable: %v", err)
		http.Error(w, "Ranking unavailable", http.StatusBadGateway)

		return
	}

	s.writeJSON(w, board)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	snap, err := s.currentSnapshot(r, id)

	switch {
	case errors.Is(err, dashboard.ErrClosed):
		http.Error(w, "Service shutting down", http.StatusServiceUnavailable)
	case snap == nil:
		http.Error(w, "Device state unavailable", http.StatusBadGateway)
	default:
		s.writeJSON(w, snap)
	}
}

// currentSnapshot returns the running view's snapshot, refreshing once
// inline when the view has not produced one yet.
func (s *Server) currentSnapshot(r *http.Request, id int64) (*dashboard.Snapshot, error) {
	view, err := s.opts.Dashboards.Acquire(id)
	if err != nil {
		return nil, err
	}
	defer s.opts.Dashboards.Release(id)

	if snap := view.Snapshot(); snap != nil {
		return snap, nil
	}

	if err := view.Refresh(r.Context()); err != nil {
		s.log.Warnf("Dashboard for device %d: %v", id, err)
	}

	return view.Snapshot(), nil
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	id, sig, ok := s.deviceSignal(w, r)
	if !ok {
		return
	}

	q, err := parseChartQuery(r.URL.Query(), s.maxZoom())
	if err == nil {
		err = checkFeatures(sig, q.Features)
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	frame := s.chartFrame(r.Context(), id, sig, q)
	if frame == nil {
		http.Error(w, "Chart data unavailable", http.StatusBadGateway)

		return
	}

	var crosshair *chart.Crosshair
	if q.HasX {
		crosshair, _ = chart.Inspect(frame.Series, chart.XScale(frame.Series), q.Transform, q.X)
	}

	var buf bytes.Buffer

	if err := chart.Render(&buf, frame.Series, chart.RenderOptions{
		Transform: q.Transform,
		MaxZoom:   s.maxZoom(),
		Crosshair: crosshair,
		Overlays:  s.maskOverlays(r.Context(), id, sig, frame.Series, q),
	}); err != nil {
		s.log.Errorf("Rendering chart %d/%s: %v", id, sig.Key, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	setTransformHeaders(w, q.Transform)
	writeSVG(w, &buf)
}

func (s *Server) inspectChart(w http.ResponseWriter, r *http.Request) {
	id, sig, ok := s.deviceSignal(w, r)
	if !ok {
		return
	}

	q, err := parseChartQuery(r.URL.Query(), s.maxZoom())
	if err == nil && !q.HasX {
		err = fmt.Errorf("%w: x is required", errBadQuery)
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	frame := s.chartFrame(r.Context(), id, sig, q)
	if frame == nil {
		http.Error(w, "Chart data unavailable", http.StatusBadGateway)

		return
	}

	crosshair, err := chart.Inspect(frame.Series, chart.XScale(frame.Series), q.Transform, q.X)
	if err != nil {
		http.Error(w, "No data", http.StatusNotFound)

		return
	}

	setTransformHeaders(w, q.Transform)
	s.writeJSON(w, InspectResponse{Crosshair: crosshair, Transform: q.Transform})
}

// chartFrame serves pointer interaction from the cached frame and only
// goes upstream on an explicit refresh or when nothing is cached yet.
func (s *Server) chartFrame(ctx context.Context, id int64, sig models.Signal, q *chartQuery) *chart.Frame {
	if !q.Refresh {
		if f, ok := s.opts.Charts.Frame(id, sig, q.Forecast); ok {
			return f
		}
	}

	f, err := s.opts.Charts.Refresh(ctx, id, sig, chart.Options{Forecast: q.Forecast, Window: q.Window})
	if err != nil {
		s.log.Warnf("Chart %d/%s: %v", id, sig.Key, err)
	}

	return f
}

// maskOverlays draws the selected impact features from the cached mask,
// fetching it on refresh or when nothing is cached. A missing mask leaves
// the chart without overlays.
func (s *Server) maskOverlays(ctx context.Context, id int64, sig models.Signal, series *chart.Series, q *chartQuery) []chart.Overlay {
	if len(q.Features) == 0 {
		return nil
	}

	grid, ok := s.opts.Heatmaps.Grid(id, sig)
	if q.Refresh || !ok {
		var err error

		if grid, err = s.opts.Heatmaps.Load(ctx, id, sig); err != nil {
			s.log.Warnf("Impact overlay %d/%s: %v", id, sig.Key, err)
		}
	}

	if grid == nil {
		return nil
	}

	return chart.MaskOverlays(series, grid, q.Features)
}

func checkFeatures(sig models.Signal, features []string) error {
	known := sig.Features()

	for _, f := range features {
		if !slices.Contains(known, f) {
			return fmt.Errorf("%w: %s does not track feature %q", errBadQuery, sig.Key, f)
		}
	}

	return nil
}

func (s *Server) getImpact(w http.ResponseWriter, r *http.Request) {
	id, sig, ok := s.deviceSignal(w, r)
	if !ok {
		return
	}

	grid, err := s.opts.Heatmaps.Load(r.Context(), id, sig)
	if grid == nil {
		s.log.Warnf("Impact mask %d/%s: %v", id, sig.Key, err)
		http.Error(w, "Impact mask unavailable", http.StatusBadGateway)

		return
	}

	var buf bytes.Buffer

	if err := heatmap.Render(&buf, heatmap.Title(sig), grid); err != nil {
		s.log.Errorf("Rendering impact mask %d/%s: %v", id, sig.Key, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	writeSVG(w, &buf)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	id, sig, ok := s.deviceSignal(w, r)
	if !ok {
		return
	}

	cells, err := s.opts.Charts.Status(r.Context(), id, sig)
	if err != nil {
		http.Error(w, "Status grid unavailable", http.StatusBadGateway)

		return
	}

	var buf bytes.Buffer

	if err := chart.RenderStatus(&buf, sig, cells); err != nil {
		s.log.Errorf("Rendering status grid %d/%s: %v", id, sig.Key, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	writeSVG(w, &buf)
}

func (s *Server) getCSV(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	body, err := s.opts.API.ExportCSV(r.Context(), id)

	switch {
	case errors.Is(err, pemfcapi.ErrNotFound):
		http.Error(w, "Device not found", http.StatusNotFound)

		return
	case err != nil:
		s.log.Errorf("CSV export for device %d: %v", id, err)
		http.Error(w, "CSV export unavailable", http.StatusBadGateway)

		return
	}

	defer func() {
		if err := body.Close(); err != nil {
			s.log.Debugf("Closing CSV body for device %d: %v", id, err)
		}
	}()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pemfc_%d.csv"`, id))

	if _, err := io.Copy(w, body); err != nil {
		s.log.Warnf("CSV export for device %d interrupted: %v", id, err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	view, err := s.opts.Dashboards.Acquire(id)
	if err != nil {
		http.Error(w, "Service shutting down", http.StatusServiceUnavailable)

		return
	}
	defer s.opts.Dashboards.Release(id)

	if err := s.opts.Hub.Serve(w, r, id, view.Snapshot()); err != nil {
		s.log.Warnf("Websocket for device %d: %v", id, err)
	}
}

func (*Server) deviceSignal(w http.ResponseWriter, r *http.Request) (int64, models.Signal, bool) {
	id, err := deviceID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return 0, models.Signal{}, false
	}

	sig, err := models.LookupSignal(mux.Vars(r)["signal"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return 0, models.Signal{}, false
	}

	return id, sig, true
}

func deviceID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errBadDeviceID, mux.Vars(r)["id"])
	}

	return id, nil
}

// maxZoom is the zoom ceiling charts are rendered with; 1 pins them to
// the full extent.
func (s *Server) maxZoom() float64 {
	if s.opts.DisableZoom {
		return 1
	}

	return s.opts.MaxZoom
}

// parseChartQuery reads zoom (K), pan (X), an optional zoom step
// (factor around anchor), an optional pan step (dx), the crosshair x and
// the forecast and refresh flags. The resulting transform is clamped. With
// a ceiling of 1 the zoom and pan parameters are ignored.
func parseChartQuery(q url.Values, maxZoom float64) (*chartQuery, error) {
	out := &chartQuery{Transform: chart.Identity, Forecast: true}

	var err error

	if maxZoom > 1 {
		if out.Transform, err = parseTransform(q, maxZoom); err != nil {
			return nil, err
		}
	}

	if raw := q.Get("x"); raw != "" {
		if out.X, err = strconv.ParseFloat(raw, 64); err != nil || math.IsNaN(out.X) {
			return nil, fmt.Errorf("%w: x=%q", errBadQuery, raw)
		}

		out.HasX = true
	}

	if out.Forecast, err = optionalBool(q, "forecast", true); err != nil {
		return nil, err
	}

	if out.Refresh, err = optionalBool(q, "refresh", false); err != nil {
		return nil, err
	}

	if raw := q.Get("window"); raw != "" {
		if out.Window, err = strconv.Atoi(raw); err != nil || out.Window <= 0 {
			return nil, fmt.Errorf("%w: window=%q", errBadQuery, raw)
		}
	}

	out.Features = optionalList(q, "features")

	return out, nil
}

func parseTransform(q url.Values, maxZoom float64) (chart.Transform, error) {
	t := chart.Identity

	floats := map[string]*float64{
		"zoom": &t.K,
		"pan":  &t.X,
	}

	for name, dst := range floats {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return t, fmt.Errorf("%w: %s=%q", errBadQuery, name, raw)
			}

			*dst = v
		}
	}

	width := float64(chart.PlotWidth)

	if raw := q.Get("factor"); raw != "" {
		factor, err := strconv.ParseFloat(raw, 64)
		if err != nil || factor <= 0 {
			return t, fmt.Errorf("%w: factor=%q", errBadQuery, raw)
		}

		anchor, err := optionalFloat(q, "anchor", width/2)
		if err != nil {
			return t, err
		}

		t = t.ZoomAt(anchor, factor, width, maxZoom)
	}

	dx, err := optionalFloat(q, "dx", 0)
	if err != nil {
		return t, err
	}

	return t.PanBy(dx, width, maxZoom), nil
}

func optionalFloat(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadQuery, name, raw)
	}

	return v, nil
}

// optionalList reads a comma separated or repeated parameter, dropping
// blanks and duplicates.
func optionalList(q url.Values, name string) []string {
	var out []string

	seen := make(map[string]bool)

	for _, raw := range q[name] {
		for _, item := range strings.Split(raw, ",") {
			item = strings.TrimSpace(item)
			if item == "" || seen[item] {
				continue
			}

			seen[item] = true
			out = append(out, item)
		}
	}

	return out
}

func optionalBool(q url.Values, name string, def bool) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errBadQuery, name, raw)
	}

	return v, nil
}

func setTransformHeaders(w http.ResponseWriter, t chart.Transform) {
	w.Header().Set(headerZoom, strconv.FormatFloat(t.K, 'f', -1, 64))
	w.Header().Set(headerPan, strconv.FormatFloat(t.X, 'f', -1, 64))
}

func writeSVG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("Error encoding response: %v", err)
	}
}
