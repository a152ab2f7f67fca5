package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsCSV = `EVENT_ID,CONTRACTOR_UEI,CONTRACTOR_NAME,RELATED_ENTITY_UEI,RELATED_ENTITY_NAME,RELATED_ENTITY_TYPE,FLOW_DIRECTION,EVENT_TYPE,EVENT_AMOUNT,AWARD_KEY,AWARD_TOTAL_VALUE,AWARD_START_DATE,AWARD_END_DATE,POP_STATE,POP_CITY
E1,C1,Acme,A1,Dept of Things,GOVERNMENT,INFLOW,PRIME,500000,K1,2000000,2024-01-01,2025-01-01,VA,Arlington
E2,C1,Acme,P1,Widgets LLC,CONTRACTOR,OUTFLOW,SUBAWARD,100000,K2,300000,2024-01-01,2025-01-01,MD,Baltimore
`

func TestRunOneShotReport(t *testing.T) {
	color.NoColor = true
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(eventsCSV), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--input", path, "--focal", "C1", "--asof", "2024-06-01", "--config", "",
	}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Focal entity: Acme (C1)")
	assert.Contains(t, out.String(), "Widgets LLC")
}

func TestRunRequiresInputAndFocal(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--config", ""}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file is required")
	assert.Contains(t, err.Error(), "focal entity is required")
}

func TestRunBadCoordinatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(eventsCSV), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--input", path, "--focal", "C1", "--coordinates", filepath.Join(t.TempDir(), "missing.toml"), "--config", "",
	}, &out)
	assert.Error(t, err)
}
