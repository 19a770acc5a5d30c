package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorRecord_UnmarshalJSON(t *testing.T) {
	payload := `[
		{"timestamp":"2025-05-01T10:00:00","pw":101.5,"u_totV":48.2,"t_3":61.0,"iA":3.1,
		 "powerState":"NORMAL","voltageState":"WARNING","temperatureState":"ERROR"},
		{"timestamp":1714557601,"pw":99.0,"U_TOTV":47.9,"t_3":null,"powerVoltageState":"DANGER"}
	]`

	var records []SensorRecord

	require.NoError(t, json.Unmarshal([]byte(payload), &records))
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "2025-05-01T10:00:00", first.Timestamp)

	v, ok := first.Value(SignalVoltage)
	assert.True(t, ok)
	assert.InDelta(t, 48.2, v, 1e-9)

	aux, ok := first.Value("iA")
	assert.True(t, ok)
	assert.InDelta(t, 3.1, aux, 1e-9)
	assert.Equal(t, StateWarning, first.StateOf(SignalVoltage))
	assert.Equal(t, StateError, first.StateOf(SignalTemperature))

	second := records[1]
	assert.Equal(t, "1714557601", second.Timestamp)

	v, ok = second.Value(SignalVoltage)
	assert.True(t, ok, "legacy U_TOTV key is accepted")
	assert.InDelta(t, 47.9, v, 1e-9)

	_, ok = second.Value(SignalTemperature)
	assert.False(t, ok, "null values are absent")
	assert.Equal(t, StateError, second.StateOf(SignalPower))
	assert.Equal(t, StateError, second.StateOf(SignalVoltage))
	assert.Equal(t, StateUnknown, second.StateOf(SignalTemperature))
}

func TestSensorRecord_CanonicalKeyWins(t *testing.T) {
	payload := []byte(`{"u_totV":48.2,"U_TOTV":11.1,"PW":5,"pw":99,"T_3":60,"t_3":null}`)

	// map iteration order varies, so decode repeatedly
	for range 50 {
		var r SensorRecord

		require.NoError(t, json.Unmarshal(payload, &r))

		v, _ := r.Value(SignalVoltage)
		assert.InDelta(t, 48.2, v, 1e-9)

		v, _ = r.Value(SignalPower)
		assert.InDelta(t, 99, v, 1e-9)

		v, ok := r.Value(SignalTemperature)
		assert.True(t, ok, "a null canonical value leaves the alias in place")
		assert.InDelta(t, 60, v, 1e-9)
	}
}

func TestReverse(t *testing.T) {
	records := []SensorRecord{{Timestamp: "1"}, {Timestamp: "2"}, {Timestamp: "3"}}

	reversed := Reverse(records)

	assert.Equal(t, "3", reversed[0].Timestamp)
	assert.Equal(t, "1", reversed[2].Timestamp)
	assert.Equal(t, "1", records[0].Timestamp, "input is not modified")
}

func TestPredictionPoint_UnmarshalJSON(t *testing.T) {
	var points []PredictionPoint

	require.NoError(t, json.Unmarshal([]byte(`[1.5, {"value":2,"state":"WARNING"}, {"prediction":3}]`), &points))
	require.Len(t, points, 3)

	assert.InDelta(t, 1.5, points[0].Value, 1e-9)
	assert.Equal(t, StateUnknown, points[0].State)
	assert.Equal(t, StateWarning, points[1].State)
	assert.InDelta(t, 3.0, points[2].Value, 1e-9)

	err := json.Unmarshal([]byte(`[{"state":"NORMAL"}]`), &points)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestImpactMask_Empty(t *testing.T) {
	var nilMask *ImpactMask

	assert.True(t, nilMask.Empty())
	assert.True(t, (&ImpactMask{}).Empty())
	assert.False(t, (&ImpactMask{Value: [][]float64{{0.5}}}).Empty())
}

func TestLookupSignal(t *testing.T) {
	sig, err := LookupSignal("pw")
	require.NoError(t, err)
	assert.Equal(t, "power", sig.Path)

	sig, err = LookupSignal("temperature")
	require.NoError(t, err)
	assert.Equal(t, SignalTemperature, sig.Key)
	assert.Len(t, sig.Features(), 4)

	_, err = LookupSignal("humidity")
	assert.ErrorIs(t, err, ErrUnknownSignal)
}
