package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carverauto/pemfcradar/pkg/models"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testDevice() *models.Device {
	return &models.Device{
		ID:               7,
		ClientID:         1,
		ModelName:        "PEMFC-07",
		PowerState:       models.StateNormal,
		VoltageState:     models.StateWarning,
		TemperatureState: models.StateNormal,
	}
}

func testRecords() []models.SensorRecord {
	return []models.SensorRecord{
		{Timestamp: "1", Values: map[string]float64{models.SignalPower: 100}},
		{Timestamp: "2", Values: map[string]float64{
			models.SignalPower:       101.25,
			models.SignalVoltage:     48.5,
			models.SignalTemperature: 61,
		}},
	}
}

func TestBuildSnapshot(t *testing.T) {
	now := time.Now()

	snap := BuildSnapshot(testDevice(), testRecords(), now)

	require.NotNil(t, snap.Latest)
	assert.Equal(t, "2", snap.Latest.Timestamp)
	require.Len(t, snap.Badges, 3)

	assert.Equal(t, models.SignalPower, snap.Badges[0].Key)
	assert.Equal(t, "#14ca74", snap.Badges[0].Color)
	assert.Equal(t, "101.25W", snap.Badges[0].Value)
	assert.Equal(t, models.StateWarning, snap.Badges[1].State)
	assert.Equal(t, "#f0ad4e", snap.Badges[1].Color)

	assert.Equal(t, models.StateWarning, snap.Overall.State)
	assert.Equal(t, now, snap.UpdatedAt)
}

func TestBuildSnapshot_NoRecords(t *testing.T) {
	snap := BuildSnapshot(testDevice(), nil, time.Now())

	assert.Nil(t, snap.Latest)
	assert.Empty(t, snap.Badges[0].Value)
}

func TestView_RefreshKeepsPreviousOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := pemfcapi.NewMockService(ctrl)

	var updates int

	v := NewView(7, api, nil, func(*Snapshot) { updates++ })

	api.EXPECT().GetDevice(gomock.Any(), int64(7)).Return(testDevice(), nil)
	api.EXPECT().AllRecords(gomock.Any(), int64(7)).Return(testRecords(), nil)

	require.NoError(t, v.Refresh(context.Background()))

	first := v.Snapshot()
	require.NotNil(t, first)

	api.EXPECT().GetDevice(gomock.Any(), int64(7)).Return(testDevice(), nil)
	api.EXPECT().AllRecords(gomock.Any(), int64(7)).Return(nil, errors.New("bad gateway"))

	err := v.Refresh(context.Background())
	require.ErrorIs(t, err, errRefreshFailed)
	assert.Same(t, first, v.Snapshot())
	assert.Equal(t, 1, updates)
}

func TestView_DiscardDropsLateResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := pemfcapi.NewMockService(ctrl)

	release := make(chan struct{})

	v := NewView(7, api, nil, nil)

	api.EXPECT().GetDevice(gomock.Any(), int64(7)).DoAndReturn(
		func(context.Context, int64) (*models.Device, error) {
			<-release

			return testDevice(), nil
		})
	api.EXPECT().AllRecords(gomock.Any(), int64(7)).Return(testRecords(), nil)

	done := make(chan error, 1)

	go func() { done <- v.Refresh(context.Background()) }()

	v.discard()
	close(release)

	require.NoError(t, <-done)
	assert.Nil(t, v.Snapshot())
}

func TestManager_AcquireReleaseIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := pemfcapi.NewMockService(ctrl)

	api.EXPECT().GetDevice(gomock.Any(), int64(7)).Return(testDevice(), nil).AnyTimes()
	api.EXPECT().AllRecords(gomock.Any(), int64(7)).Return(testRecords(), nil).AnyTimes()

	var (
		mu  sync.Mutex
		got []int64
	)

	m := NewManager(api, ManagerOptions{
		PollInterval: time.Hour,
		IdleTimeout:  10 * time.Millisecond,
		OnUpdate: func(id int64, _ *Snapshot) {
			mu.Lock()
			defer mu.Unlock()

			got = append(got, id)
		},
	})

	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	v1, err := m.Acquire(7)
	require.NoError(t, err)

	v2, err := m.Acquire(7)
	require.NoError(t, err)
	assert.Same(t, v1, v2, "one view per device")
	assert.Equal(t, 1, m.Active())

	assert.Eventually(t, func() bool { return v1.Snapshot() != nil }, time.Second, time.Millisecond)

	m.Release(7)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, m.Active(), "still referenced")

	m.Release(7)
	assert.Eventually(t, func() bool { return m.Active() == 0 }, time.Second, time.Millisecond)

	mu.Lock()
	assert.Contains(t, got, int64(7))
	mu.Unlock()
}

func TestManager_ReacquireCancelsIdleStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := pemfcapi.NewMockService(ctrl)

	api.EXPECT().GetDevice(gomock.Any(), gomock.Any()).Return(testDevice(), nil).AnyTimes()
	api.EXPECT().AllRecords(gomock.Any(), gomock.Any()).Return(testRecords(), nil).AnyTimes()

	m := NewManager(api, ManagerOptions{PollInterval: time.Hour, IdleTimeout: 20 * time.Millisecond})
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	_, err := m.Acquire(7)
	require.NoError(t, err)

	m.Release(7)

	_, err = m.Acquire(7)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, m.Active())
}

func TestManager_StopRejectsAcquire(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := pemfcapi.NewMockService(ctrl)

	api.EXPECT().GetDevice(gomock.Any(), gomock.Any()).Return(testDevice(), nil).AnyTimes()
	api.EXPECT().AllRecords(gomock.Any(), gomock.Any()).Return(testRecords(), nil).AnyTimes()

	m := NewManager(api, ManagerOptions{PollInterval: time.Hour})

	_, err := m.Acquire(1)
	require.NoError(t, err)

	require.NoError(t, m.Stop(context.Background()))
	require.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, 0, m.Active())

	_, err = m.Acquire(2)
	assert.ErrorIs(t, err, ErrClosed)
}
