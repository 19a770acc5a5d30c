package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/carverauto/pemfcradar/pkg/chart"
	"github.com/carverauto/pemfcradar/pkg/dashboard"
	"github.com/carverauto/pemfcradar/pkg/heatmap"
	"github.com/carverauto/pemfcradar/pkg/models"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/carverauto/pemfcradar/pkg/rank"
	"github.com/carverauto/pemfcradar/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testClientID = 1

func newTestServer(t *testing.T) (*Server, *pemfcapi.MockService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	api := pemfcapi.NewMockService(ctrl)
	hub := NewHub(nil)

	manager := dashboard.NewManager(api, dashboard.ManagerOptions{
		PollInterval: time.Hour,
		OnUpdate:     hub.Broadcast,
	})
	t.Cleanup(func() { _ = manager.Stop(context.Background()) })

	s, err := NewServer(Options{
		MaxZoom:        10,
		ForecastWindow: 20,
		PollInterval:   5 * time.Second,
		API:            api,
		Registry:       registry.New(api, testClientID, nil),
		Dashboards:     manager,
		Charts:         chart.NewService(api, chart.ServiceOptions{RecentRecords: 600, ForecastWindow: 20}),
		Heatmaps:       heatmap.NewService(api, nil),
		Ranks:          rank.NewService(api, nil),
		Hub:            hub,
	})
	require.NoError(t, err)

	return s, api
}

func do(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) (msg, level string) {
	t.Helper()

	require.Equal(t, http.StatusSeeOther, rec.Code)

	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/", u.Path)

	return u.Query().Get("flash"), u.Query().Get("level")
}

func testDevice(id int64, name string, state models.State) models.Device {
	return models.Device{
		ID:               id,
		ClientID:         testClientID,
		ModelName:        name,
		ManufacturedDate: "2024-01-02",
		Lat:              models.NewCoordinate(34),
		Lng:              models.NewCoordinate(127),
		PowerState:       state,
		VoltageState:     models.StateNormal,
		TemperatureState: models.StateNormal,
	}
}

func testRecords(n int) []models.SensorRecord {
	out := make([]models.SensorRecord, n)

	for i := range out {
		out[i] = models.SensorRecord{
			Timestamp: time.Unix(int64(i), 0).UTC().Format(time.RFC3339),
			Values:    map[string]float64{models.SignalPower: 100 + float64(i)},
			States:    map[string]models.State{models.SignalPower: models.StateNormal},
		}
	}

	return out
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/nope", "/abc/dashboard", "/a/b/c"} {
		rec := do(t, s, http.MethodGet, path, nil)

		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
	}
}

func TestRegistryPage(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return([]models.Device{
		testDevice(7, "stack-A", models.StateNormal),
		testDevice(8, "stack-B", models.StateError),
	}, nil).Times(2)
	api.EXPECT().ClientName(gomock.Any(), int64(testClientID)).Return("Acme Hydrogen", nil).Times(2)

	rec := do(t, s, http.MethodGet, "/?flash=Hello&level=info", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Acme Hydrogen")
	assert.Contains(t, body, `href="/7/dashboard"`)
	assert.Contains(t, body, "stack-B")
	assert.Contains(t, body, "flash-info")
	assert.Contains(t, body, "Hello")

	rec = do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "flash-info")
}

func TestRegistryPage_RefetchesOnEveryVisit(t *testing.T) {
	s, api := newTestServer(t)

	gomock.InOrder(
		api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return([]models.Device{
			testDevice(7, "stack-A", models.StateNormal),
		}, nil),
		api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return([]models.Device{
			testDevice(7, "stack-A", models.StateNormal),
			testDevice(9, "stack-Z", models.StateError),
		}, nil),
		api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return(nil, errors.New("connection refused")),
	)
	api.EXPECT().ClientName(gomock.Any(), int64(testClientID)).Return("Acme", nil).Times(2)

	rec := do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "stack-Z")

	rec = do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stack-Z")

	snap := s.opts.Registry.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, 1, snap.Counts.Error)

	// the upstream going away keeps the last list on screen
	rec = do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be loaded")
	assert.Contains(t, rec.Body.String(), "stack-Z")
}

func TestRegistryAPI_Refetches(t *testing.T) {
	s, api := newTestServer(t)

	gomock.InOrder(
		api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return(nil, errors.New("connection refused")),
		api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return([]models.Device{
			testDevice(7, "stack-A", models.StateNormal),
		}, nil),
		api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return([]models.Device{
			testDevice(7, "stack-A", models.StateNormal),
			testDevice(9, "stack-Z", models.StateError),
		}, nil),
		api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return(nil, errors.New("timeout")),
	)
	api.EXPECT().ClientName(gomock.Any(), int64(testClientID)).Return("Acme", nil).Times(2)

	rec := do(t, s, http.MethodGet, "/api/registry", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code, "nothing loaded yet")

	rows := func() int {
		rec := do(t, s, http.MethodGet, "/api/registry", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var snap registry.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))

		return len(snap.Rows)
	}

	assert.Equal(t, 1, rows())
	assert.Equal(t, 2, rows())
	assert.Equal(t, 2, rows(), "falls back to the last loaded list")
}

func TestRegistryPage_UpstreamDown(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return(nil, errors.New("connection refused"))

	rec := do(t, s, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be loaded")
}

func TestRegister(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *models.RegistrationRequest) error {
			assert.Equal(t, "stack-C", req.ModelName)
			assert.Equal(t, int64(testClientID), req.ClientID)
			assert.InDelta(t, 35.1, req.Lat, 1e-9)

			return nil
		})
	api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return(nil, nil)
	api.EXPECT().ClientName(gomock.Any(), int64(testClientID)).Return("Acme", nil)

	form := url.Values{
		"modelName":        {"stack-C"},
		"lat":              {"35.1"},
		"lng":              {"129.0"},
		"manufacturedDate": {"2024-05-06"},
	}

	msg, level := flashOf(t, do(t, s, http.MethodPost, "/pemfc", strings.NewReader(form.Encode())))

	assert.Equal(t, "Registered stack-C.", msg)
	assert.Equal(t, flashInfo, level)
}

func TestRegister_Invalid(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			name: "bad_latitude",
			form: url.Values{"modelName": {"x"}, "lat": {"north"}, "lng": {"1"}, "manufacturedDate": {"2024-01-01"}},
			want: "latitude must be a number",
		},
		{
			name: "missing_model",
			form: url.Values{"lat": {"1"}, "lng": {"1"}, "manufacturedDate": {"2024-01-01"}},
			want: "model name is required",
		},
		{
			name: "bad_date",
			form: url.Values{"modelName": {"x"}, "lat": {"1"}, "lng": {"1"}, "manufacturedDate": {"01/02/2024"}},
			want: "YYYY-MM-DD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, level := flashOf(t, do(t, s, http.MethodPost, "/pemfc", strings.NewReader(tt.form.Encode())))

			assert.Contains(t, msg, tt.want)
			assert.Equal(t, flashError, level)
		})
	}
}

func TestRegister_UpstreamRejects(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).Return(errors.New("500"))

	form := url.Values{"modelName": {"x"}, "lat": {"1"}, "lng": {"1"}, "manufacturedDate": {"2024-01-01"}}

	msg, level := flashOf(t, do(t, s, http.MethodPost, "/pemfc", strings.NewReader(form.Encode())))

	assert.Contains(t, msg, "Registration failed")
	assert.Equal(t, flashError, level)
}

func TestReload(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return(nil, errors.New("timeout"))

	msg, level := flashOf(t, do(t, s, http.MethodPost, "/pemfc/reload", nil))

	assert.Contains(t, msg, "Reload failed")
	assert.Equal(t, flashError, level)
}

func TestDeleteOne_Failure(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().DeleteDevice(gomock.Any(), int64(7)).Return(errors.New("boom"))

	msg, level := flashOf(t, do(t, s, http.MethodPost, "/pemfc/7/delete", nil))

	assert.Equal(t, "Deleted 0 of 1 devices. Failed: #7.", msg)
	assert.Equal(t, flashError, level)
}

func TestDeleteAll_Partial(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().ListClientDevices(gomock.Any(), int64(testClientID)).Return([]models.Device{
		testDevice(1, "a", models.StateNormal),
		testDevice(2, "b", models.StateNormal),
		testDevice(3, "c", models.StateNormal),
	}, nil)
	api.EXPECT().ClientName(gomock.Any(), gomock.Any()).Return("Acme", nil)
	api.EXPECT().DeleteDevice(gomock.Any(), int64(1)).Return(nil)
	api.EXPECT().DeleteDevice(gomock.Any(), int64(2)).Return(errors.New("locked"))
	api.EXPECT().DeleteDevice(gomock.Any(), int64(3)).Return(nil)

	msg, level := flashOf(t, do(t, s, http.MethodPost, "/pemfc/delete-all", nil))

	assert.Equal(t, "Deleted 2 of 3 devices. Failed: #2.", msg)
	assert.Equal(t, flashError, level)

	snap := s.opts.Registry.Snapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, int64(2), snap.Rows[0].Device.ID)
	assert.Len(t, snap.Markers, 1)
}

func TestChart_UnknownSignal(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/devices/7/chart/humidity.svg", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChart_BadQuery(t *testing.T) {
	s, _ := newTestServer(t)

	for _, q := range []string{"zoom=big", "factor=0", "forecast=maybe", "window=-1", "x=left"} {
		rec := do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?"+q, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestChart_UpstreamFailureWithoutFrame(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().RecentRecords(gomock.Any(), int64(7)).Return(nil, errors.New("503"))
	api.EXPECT().Predictions(gomock.Any(), int64(7), "power", 20).Return(nil, nil).AnyTimes()

	rec := do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestChart_RenderAndInspect(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().RecentRecords(gomock.Any(), int64(7)).Return(testRecords(10), nil).Times(1)
	api.EXPECT().Predictions(gomock.Any(), int64(7), "power", 20).
		Return([]models.PredictionPoint{{Value: 111, State: models.StateWarning}}, nil).Times(1)

	rec := do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?zoom=50&pan=100", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "10", rec.Header().Get(headerZoom), "zoom is capped")
	assert.Equal(t, "0", rec.Header().Get(headerPan), "pan cannot leave the data")
	assert.Contains(t, rec.Body.String(), "<polyline")

	// pointer interaction reuses the cached frame
	rec = do(t, s, http.MethodGet, "/api/devices/7/chart/power/inspect?x=0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Crosshair)
	assert.Equal(t, 0, resp.Crosshair.Index)
	assert.Equal(t, "-9s", resp.Crosshair.Offset)
	assert.Equal(t, chart.Identity, resp.Transform)

	rec = do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?x=10000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "+1s", "crosshair clamps to the last forecast point")

	rec = do(t, s, http.MethodGet, "/api/devices/7/chart/pw/inspect", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "x is required")

	for _, x := range []string{"1e30", "%2BInf"} {
		rec = do(t, s, http.MethodGet, "/api/devices/7/chart/pw/inspect?x="+x, nil)
		require.Equal(t, http.StatusOK, rec.Code, x)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 10, resp.Crosshair.Index, "x=%s lands on the last forecast point", x)
	}

	rec = do(t, s, http.MethodGet, "/api/devices/7/chart/pw/inspect?x=NaN", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChart_ZoomDisabled(t *testing.T) {
	s, api := newTestServer(t)
	s.opts.DisableZoom = true

	device := testDevice(7, "stack-A", models.StateNormal)

	api.EXPECT().RecentRecords(gomock.Any(), int64(7)).Return(testRecords(10), nil).Times(1)
	api.EXPECT().GetDevice(gomock.Any(), int64(7)).Return(&device, nil).AnyTimes()
	api.EXPECT().AllRecords(gomock.Any(), int64(7)).Return(testRecords(3), nil).AnyTimes()

	rec := do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?forecast=false&zoom=4&pan=-300&factor=2&dx=-50", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(headerZoom))
	assert.Equal(t, "0", rec.Header().Get(headerPan))

	rec = do(t, s, http.MethodGet, "/api/devices/7/chart/pw/inspect?forecast=false&zoom=4&x=0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, chart.Identity, resp.Transform)
	assert.Equal(t, 0, resp.Crosshair.Index)

	rec = do(t, s, http.MethodGet, "/7/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-zoom="false"`)
}

func TestChart_FeatureOverlays(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().RecentRecords(gomock.Any(), int64(7)).Return(testRecords(10), nil).Times(1)
	api.EXPECT().ImpactMask(gomock.Any(), int64(7), models.GroupVoltagePower).
		Return(&models.ImpactMask{Value: [][]float64{{0.9, 0.1}, {0.4, 0.5}, {0.2, 0.7}}}, nil).Times(1)

	rec := do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?forecast=false&features=iA,iA_diff", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, "<polyline"), "history plus one line per feature")
	assert.Contains(t, body, "stroke:#1f77b4")
	assert.Contains(t, body, "stroke:#ff7f0e")

	// hover reuses the cached mask
	rec = do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?forecast=false&features=iA&x=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "<polyline"))

	rec = do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?forecast=false&features=T_Heater", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "temperature feature on a power chart")
}

func TestChart_FeatureOverlaysWithoutMask(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().RecentRecords(gomock.Any(), int64(7)).Return(testRecords(10), nil)
	api.EXPECT().ImpactMask(gomock.Any(), int64(7), models.GroupVoltagePower).Return(nil, errors.New("timeout"))

	rec := do(t, s, http.MethodGet, "/api/devices/7/chart/pw.svg?forecast=false&features=iA", nil)

	require.Equal(t, http.StatusOK, rec.Code, "the trend still renders")
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<polyline"))
}

func TestParseChartQuery(t *testing.T) {
	width := float64(chart.PlotWidth)

	q, err := parseChartQuery(url.Values{}, 10)
	require.NoError(t, err)
	assert.Equal(t, chart.Identity, q.Transform)
	assert.True(t, q.Forecast)
	assert.False(t, q.Refresh)
	assert.False(t, q.HasX)

	q, err = parseChartQuery(url.Values{"factor": {"2"}, "anchor": {"0"}}, 10)
	require.NoError(t, err)
	assert.InDelta(t, 2, q.Transform.K, 1e-9)
	assert.InDelta(t, 0, q.Transform.X, 1e-9, "zooming at the left edge keeps it fixed")

	q, err = parseChartQuery(url.Values{"zoom": {"2"}, "dx": {"-100000"}}, 10)
	require.NoError(t, err)
	assert.InDelta(t, -width, q.Transform.X, 1e-9, "pan stops at the right edge")

	q, err = parseChartQuery(url.Values{"forecast": {"false"}, "refresh": {"1"}, "window": {"5"}, "x": {"12.5"}}, 10)
	require.NoError(t, err)
	assert.False(t, q.Forecast)
	assert.True(t, q.Refresh)
	assert.Equal(t, 5, q.Window)
	assert.True(t, q.HasX)
	assert.InDelta(t, 12.5, q.X, 1e-9)

	q, err = parseChartQuery(url.Values{"features": {"iA, iA_diff", "iA", ""}}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"iA", "iA_diff"}, q.Features)

	q, err = parseChartQuery(url.Values{"zoom": {"big"}, "factor": {"3"}, "dx": {"-40"}}, 1)
	require.NoError(t, err, "zoom parameters are ignored without a ceiling")
	assert.Equal(t, chart.Identity, q.Transform)
}

func TestImpact_Placeholder(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().ImpactMask(gomock.Any(), int64(7), models.GroupTemperature).Return(&models.ImpactMask{}, nil)

	rec := do(t, s, http.MethodGet, "/api/devices/7/impact/t_3.svg", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), heatmap.Placeholder)
}

func TestImpact_UpstreamFailure(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().ImpactMask(gomock.Any(), int64(7), models.GroupVoltagePower).Return(nil, errors.New("timeout"))

	rec := do(t, s, http.MethodGet, "/api/devices/7/impact/pw.svg", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStatusGrid(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().AllRecords(gomock.Any(), int64(7)).Return(testRecords(40), nil)

	rec := do(t, s, http.MethodGet, "/api/devices/7/status/pw.svg", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "139.0000")
}

func TestCSV(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().ExportCSV(gomock.Any(), int64(7)).Return(io.NopCloser(strings.NewReader("time,pw\n1,2\n")), nil)

	rec := do(t, s, http.MethodGet, "/api/devices/7/csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="pemfc_7.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "time,pw\n1,2\n", rec.Body.String())

	api.EXPECT().ExportCSV(gomock.Any(), int64(8)).Return(nil, pemfcapi.ErrNotFound)

	rec = do(t, s, http.MethodGet, "/api/devices/8/csv", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRank_DemoFallback(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().Rank(gomock.Any(), "power").Return(nil, nil)

	rec := do(t, s, http.MethodGet, "/api/rank/power", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var board rank.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	assert.True(t, board.Demo)
	assert.Len(t, board.Rows, rank.TopN)
}

func TestRank_UpstreamFailure(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().Rank(gomock.Any(), "voltage").Return(nil, errors.New("502"))

	rec := do(t, s, http.MethodGet, "/api/rank/u_totV", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSnapshotAndDashboardPage(t *testing.T) {
	s, api := newTestServer(t)

	device := testDevice(7, "stack-A", models.StateWarning)

	api.EXPECT().GetDevice(gomock.Any(), int64(7)).Return(&device, nil).AnyTimes()
	api.EXPECT().AllRecords(gomock.Any(), int64(7)).Return(testRecords(3), nil).AnyTimes()

	rec := do(t, s, http.MethodGet, "/api/devices/7/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(7), snap.DeviceID)
	assert.Equal(t, models.StateWarning, snap.Overall.State)

	rec = do(t, s, http.MethodGet, "/7/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Device 7")
	assert.Contains(t, body, "stack-A")
	assert.Contains(t, body, `data-signal="u_totV"`)
	assert.Contains(t, body, "/api/devices/7/csv")
	assert.Contains(t, body, `id="trend-help"`)
}

func TestSnapshot_Unavailable(t *testing.T) {
	s, api := newTestServer(t)

	api.EXPECT().GetDevice(gomock.Any(), int64(9)).Return(nil, errors.New("down")).AnyTimes()
	api.EXPECT().AllRecords(gomock.Any(), int64(9)).Return(nil, errors.New("down")).AnyTimes()

	rec := do(t, s, http.MethodGet, "/api/devices/9/snapshot", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/static/dashboard.js", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "X-Chart-Zoom")
}
