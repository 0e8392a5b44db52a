package calsync_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-event-system/internal/calsync"
	"campus-event-system/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func calEvent(canceled bool) *model.Event {
	ev := &model.Event{
		ID:            "evt_0301",
		Title:         "Advanced Algorithms Review Session",
		Description:   "Final exam preparation",
		StartsAt:      time.Date(2025, 12, 5, 14, 0, 0, 0, time.UTC),
		EndsAt:        time.Date(2025, 12, 5, 16, 0, 0, 0, time.UTC),
		Location:      "STEM Building, Room 305",
		OrganizerID:   "prof_edwards",
		OrganizerName: "Dr. Sarah Edwards",
		Status:        model.StatusScheduled,
	}
	if canceled {
		ev.Cancel("Professor has a family emergency", "prof_edwards",
			time.Date(2025, 12, 4, 20, 0, 0, 0, time.UTC))
	}
	return ev
}

// unfold undoes rfc 5545 line folding so substring checks do not
// trip over a continuation break in the middle of a value.
func unfold(ics string) string {
	ics = strings.ReplaceAll(ics, "\r\n ", "")
	return strings.ReplaceAll(ics, "\r\n\t", "")
}

// ----- ics generation -----

func TestGenerateICSScheduled(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")

	ics, err := a.GenerateICS(calEvent(false))
	require.NoError(t, err)

	body := unfold(ics)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "VERSION:2.0")
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "UID:evt_0301@campus.edu")
	assert.Contains(t, body, "SUMMARY:Advanced Algorithms Review Session")
	assert.Contains(t, body, "STATUS:CONFIRMED")
	assert.Contains(t, body, "ORGANIZER:mailto:prof_edwards@campus.edu")
	assert.NotContains(t, body, "CANCELED:")
}

func TestGenerateICSCanceled(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")

	ics, err := a.GenerateICS(calEvent(true))
	require.NoError(t, err)

	body := unfold(ics)
	assert.Contains(t, body, "STATUS:CANCELLED")
	assert.Contains(t, body, "CANCELED: Professor has a family emergency")
	assert.NotContains(t, body, "STATUS:CONFIRMED")
}

func TestGenerateICSDeterministic(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")
	ev := calEvent(true)

	first, err := a.GenerateICS(ev)
	require.NoError(t, err)
	second, err := a.GenerateICS(ev)
	require.NoError(t, err)

	assert.Equal(t, icsLines(first), icsLines(second))
	assert.Contains(t, unfold(first), "DTSTAMP:20251204T200000Z")
}

func icsLines(ics string) []string {
	lines := strings.Split(strings.TrimRight(unfold(ics), "\r\n"), "\r\n")
	sort.Strings(lines)
	return lines
}

func TestGenerateICSRequiresIdentity(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")

	tests := []struct {
		name string
		ev   *model.Event
	}{
		{"missing id", &model.Event{Title: "Web Development Workshop"}},
		{"missing title", &model.Event{ID: "evt_0302"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.GenerateICS(tt.ev)
			require.Error(t, err)
			assert.ErrorIs(t, err, calsync.ErrICSGeneration)
		})
	}
}

// ----- sync -----

func TestSyncDefaultsToAllIntegrations(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")

	report, err := a.Sync(context.Background(), calEvent(false))
	require.NoError(t, err)

	assert.True(t, report.ICSGenerated)
	assert.Greater(t, report.ICSSize, 0)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Results, 2)
	assert.Equal(t, calsync.IntegrationGoogle, report.Results[0].Integration)
	assert.Equal(t, calsync.IntegrationOutlook, report.Results[1].Integration)
	for _, res := range report.Results {
		assert.True(t, res.Success)
		assert.Equal(t, "evt_0301", res.EventID)
	}
}

func TestSyncUnknownIntegration(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")

	report, err := a.Sync(context.Background(), calEvent(false), "bogus")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].Success)
	assert.Equal(t, `unknown integration "bogus"`, report.Results[0].Message)
}

func TestSyncFailsClosedWithoutICS(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")

	report, err := a.Sync(context.Background(), &model.Event{ID: "evt_0303"})
	require.Error(t, err)
	assert.ErrorIs(t, err, calsync.ErrICSGeneration)

	assert.False(t, report.ICSGenerated)
	assert.Empty(t, report.Results)
	assert.Empty(t, a.History("evt_0303", ""))
}

func TestSyncRegisteredPusherFailure(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")
	a.Register("campus_portal", func(ctx context.Context, ev *model.Event, ics string) error {
		return errors.New("portal unreachable")
	})

	report, err := a.Sync(context.Background(), calEvent(false),
		calsync.IntegrationGoogle, "campus_portal")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].Success)
	assert.False(t, report.Results[1].Success)
	assert.Equal(t, "portal unreachable", report.Results[1].Message)
}

func TestSyncPusherReceivesDocument(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")

	var got string
	a.Register("campus_portal", func(ctx context.Context, ev *model.Event, ics string) error {
		got = ics
		return nil
	})

	_, err := a.Sync(context.Background(), calEvent(true), "campus_portal")
	require.NoError(t, err)
	assert.Contains(t, unfold(got), "STATUS:CANCELLED")
}

// ----- history -----

func TestHistoryFilters(t *testing.T) {
	a := calsync.NewAdapter(discardLogger(), "campus.edu")
	ctx := context.Background()

	first := calEvent(false)
	second := calEvent(false)
	second.ID = "evt_0302"
	second.Title = "Web Development Workshop"

	_, err := a.Sync(ctx, first)
	require.NoError(t, err)
	_, err = a.Sync(ctx, second, calsync.IntegrationGoogle)
	require.NoError(t, err)

	assert.Len(t, a.History("", ""), 3)
	assert.Len(t, a.History("evt_0301", ""), 2)
	assert.Len(t, a.History("", calsync.IntegrationGoogle), 2)
	assert.Len(t, a.History("evt_0302", calsync.IntegrationGoogle), 1)
	assert.Empty(t, a.History("evt_0302", calsync.IntegrationOutlook))
	assert.Empty(t, a.History("evt_9999", ""))
}
