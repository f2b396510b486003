package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttahub/ttahub/internal/export"
)

func TestExportRegionGoals(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	east := e.grant(t, 1, "01CH0001")
	west := e.grant(t, 2, "02CH0001")
	goal := e.goal(t, east.ID, "East goal", "In Progress")
	e.goal(t, west.ID, "West goal", "")

	var buf bytes.Buffer
	require.NoError(t, e.exports.RegionGoals(ctx, 1, export.FormatCSV, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "R1-G-1", records[1][0])
	assert.Equal(t, goal.Name, records[1][1])
	assert.Equal(t, "01CH0001", records[1][5])
}

func TestExportRegionGoals_Empty(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	require.NoError(t, e.exports.RegionGoals(context.Background(), 9, export.FormatXLSX, &buf))
	assert.NotZero(t, buf.Len())
}
