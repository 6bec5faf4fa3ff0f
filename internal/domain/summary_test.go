package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ds, err := ParseRows(fullHeader, [][]string{
		{"T1", "RD93", "A", "C1", "5", "6", "400", "0"},
		{"T1", "RD93", "A", "C1", "5", "7", "700", "0"},
		{"T2", "UNKNOWN", "A", "C1", "5", "6", "", "1"},
		{"", "RD93", "A", "C1", "5", "6", "400", "0"},
		{"T3", "", "A", "C1", "5", "6", "400", "0"},
	})
	require.NoError(t, err)

	got := Summarize(ds)
	want := Summary{
		TotalRecords:   4,
		UniqueTurbines: 3,
		UniqueModels:   2,
		SkippedRows:    1,
		Turbines: []TurbineCount{
			{Turbine: "T1", Model: "RD93", Records: 2},
			{Turbine: "T2", Model: "UNKNOWN", Records: 1},
			{Turbine: "T3", Model: "", Records: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestNewManifest_UsesClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	m := NewManifest()
	assert.Equal(t, "turbine_power_curves_20240426_151000.zip", m.Archive)
	assert.Equal(t, fake.Now(), m.GeneratedAt)
	assert.Empty(t, m.Entries)

	_, err := uuid.Parse(m.RunID)
	require.NoError(t, err)
	assert.NotEqual(t, m.RunID, NewManifest().RunID)
}
