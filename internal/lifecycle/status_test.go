package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttahub/ttahub/internal/model"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"", "Draft", "Not Started", "In Progress", "Suspended", "Closed"} {
		got, err := ParseStatus(s)
		require.NoError(t, err, s)
		assert.Equal(t, Status(s), got)
	}

	for _, s := range []string{"Frobnicated", "Ceased/Suspended", "Completed", "closed", " Closed"} {
		_, err := ParseStatus(s)
		assert.ErrorIs(t, err, ErrInvalidStatus, s)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Ceased/Suspended", StatusSuspended.Label())
	assert.Equal(t, "Closed", StatusClosed.Label())
	assert.Equal(t, "Not Started", StatusNotStarted.Label())
	assert.Equal(t, "", StatusUnset.Label())
}

func TestStamp_NoTimestampsForDraftOrUnset(t *testing.T) {
	g := &model.Goal{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Stamp(g, "", now))
	require.NoError(t, Stamp(g, "Draft", now))

	assert.Equal(t, &model.Goal{}, g)
}

func TestStamp_InvalidStatus(t *testing.T) {
	g := &model.Goal{}
	err := Stamp(g, "Frobnicated", time.Now())
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.Nil(t, g.FirstClosedAt)
}

func TestStamp_FirstIsWriteOnceLastMoves(t *testing.T) {
	g := &model.Goal{}
	t1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	require.NoError(t, Stamp(g, "Not Started", t1))
	require.NoError(t, Stamp(g, "In Progress", t2))
	require.NoError(t, Stamp(g, "Not Started", t3))

	assert.Equal(t, t1, *g.FirstNotStartedAt)
	assert.Equal(t, t3, *g.LastNotStartedAt)
	assert.Equal(t, t2, *g.FirstInProgressAt)
	assert.Equal(t, t2, *g.LastInProgressAt)
	assert.Nil(t, g.FirstClosedAt)
}

func TestStamp_RepeatedClose(t *testing.T) {
	g := &model.Goal{}
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		require.NoError(t, Stamp(g, "Closed", base.Add(time.Duration(i)*24*time.Hour)))
	}

	assert.Equal(t, base, *g.FirstClosedAt)
	assert.Equal(t, base.Add(4*24*time.Hour), *g.LastClosedAt)
}

func TestStamp_SuspendedWritesSuspendedColumns(t *testing.T) {
	g := &model.Goal{}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Stamp(g, "Suspended", now))

	assert.Equal(t, now, *g.FirstSuspendedAt)
	assert.Equal(t, now, *g.LastSuspendedAt)
	assert.Nil(t, g.FirstCeasedSuspendedAt)
}

func TestValidateReason(t *testing.T) {
	assert.NoError(t, ValidateReason(StatusClosed, "TTA complete"))
	assert.NoError(t, ValidateReason(StatusSuspended, "Recipient is not responding"))
	assert.NoError(t, ValidateReason(StatusInProgress, ""))

	assert.ErrorIs(t, ValidateReason(StatusClosed, ""), ErrInvalidReason)
	assert.ErrorIs(t, ValidateReason(StatusClosed, "Recipient is not responding"), ErrInvalidReason)
	assert.ErrorIs(t, ValidateReason(StatusSuspended, "TTA complete"), ErrInvalidReason)
}

func TestValidateObjectiveStatus(t *testing.T) {
	assert.NoError(t, ValidateObjectiveStatus("Complete"))
	assert.NoError(t, ValidateObjectiveStatus(""))
	assert.ErrorIs(t, ValidateObjectiveStatus("Closed"), ErrInvalidStatus)
}
