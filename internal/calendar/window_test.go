package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestResolveWindowDay(t *testing.T) {
	loc := saoPaulo(t)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, loc)

	w, err := ResolveWindow(ViewDay, "", "", now, loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, loc), w.Min)
	require.Equal(t, time.Date(2024, 6, 10, 23, 59, 59, 0, loc), w.Max)

	// The empty view defaults to day.
	defaulted, err := ResolveWindow("", "", "", now, loc)
	require.NoError(t, err)
	require.Equal(t, w, defaulted)
}

func TestResolveWindowWeekRunsSundayToSaturday(t *testing.T) {
	loc := saoPaulo(t)
	// 2024-06-12 is a Wednesday.
	now := time.Date(2024, 6, 12, 9, 30, 0, 0, loc)

	w, err := ResolveWindow(ViewWeek, "", "", now, loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, loc), w.Min)
	require.Equal(t, time.Weekday(0), w.Min.Weekday())
	require.Equal(t, time.Date(2024, 6, 15, 23, 59, 59, 0, loc), w.Max)
}

func TestResolveWindowMonth(t *testing.T) {
	loc := saoPaulo(t)
	now := time.Date(2024, 2, 15, 9, 0, 0, 0, loc)

	w, err := ResolveWindow(ViewMonth, "", "", now, loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, loc), w.Min)
	require.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, loc), w.Max)
}

func TestResolveWindowExplicitRange(t *testing.T) {
	loc := saoPaulo(t)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, loc)

	w, err := ResolveWindow("", "2024-06-01", "2024-06-07", now, loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, loc), w.Min)
	// The range extends into the next day at 04:00 UTC so the whole local
	// end day is covered.
	require.Equal(t, time.Date(2024, 6, 8, 4, 0, 0, 0, time.UTC), w.Max)
}

func TestResolveWindowRejectsBadInput(t *testing.T) {
	loc := saoPaulo(t)
	now := time.Now()

	_, err := ResolveWindow("fortnight", "", "", now, loc)
	require.Error(t, err)

	_, err = ResolveWindow("", "junk", "2024-06-07", now, loc)
	require.Error(t, err)
}
