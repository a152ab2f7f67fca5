package events

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/award-network/pkg/config"
	"github.com/ritzau/award-network/pkg/model"
)

const sampleJSON = `[
  {
    "EVENT_ID": "E1",
    "CONTRACTOR_UEI": "C1",
    "CONTRACTOR_NAME": "Acme",
    "RELATED_ENTITY_UEI": "A1",
    "RELATED_ENTITY_NAME": "Agency One",
    "RELATED_ENTITY_TYPE": "government",
    "FLOW_DIRECTION": "INFLOW",
    "EVENT_TYPE": "prime",
    "EVENT_AMOUNT": 500000,
    "AWARD_KEY": "K1",
    "AWARD_TOTAL_VALUE": "$2,000,000",
    "AWARD_START_DATE": "2023-01-01",
    "AWARD_END_DATE": "2025-01-01",
    "POP_STATE": "VA",
    "POP_CITY": "Arlington",
    "NAICS_CODE": 541512,
    "PSC_CODE": null,
    "EXTRA_COLUMN": "ignored"
  }
]`

func TestDecodeJSONArray(t *testing.T) {
	decoded, err := DecodeJSON(context.Background(), strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.Len(t, decoded.Events, 1)
	assert.Empty(t, decoded.Rejected)

	e := decoded.Events[0]
	assert.Equal(t, "E1", e.EventID)
	assert.Equal(t, model.RelatedGovernment, e.RelatedEntityType)
	assert.Equal(t, model.FlowInflow, e.FlowDirection)
	assert.Equal(t, model.EventPrime, e.EventType)
	assert.InDelta(t, 500000.0, e.EventAmount, 1e-9)
	assert.InDelta(t, 2000000.0, e.AwardTotalValue, 1e-9)
	assert.Equal(t, "541512", e.NAICSCode)
	assert.Empty(t, e.PSCCode)
	assert.Equal(t, "Arlington", e.PopCity)
}

func TestDecodeJSONEnvelope(t *testing.T) {
	input := `{"events": [{"EVENT_ID": "E1", "CONTRACTOR_UEI": "C1"}, {"EVENT_ID": "E2", "CONTRACTOR_UEI": "C1"}]}`

	decoded, err := DecodeJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, decoded.Events, 2)
	assert.Equal(t, "E2", decoded.Events[1].EventID)
}

func TestDecodeJSONRejectsBadRecords(t *testing.T) {
	input := `[
	  {"EVENT_ID": "good", "EVENT_AMOUNT": "12.5"},
	  {"EVENT_ID": "bad-amount", "EVENT_AMOUNT": "lots"},
	  {"EVENT_ID": "nested", "POP_CITY": {"name": "x"}}
	]`

	decoded, err := DecodeJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, "good", decoded.Events[0].EventID)
	require.Len(t, decoded.Rejected, 2)

	var fe *FieldError
	require.ErrorAs(t, decoded.Rejected[0], &fe)
	assert.Equal(t, 2, fe.Record)
	assert.Equal(t, "EVENT_AMOUNT", fe.Field)
}

func TestDecodeJSONEmptyAndMalformed(t *testing.T) {
	decoded, err := DecodeJSON(context.Background(), strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, decoded.Events)

	_, err = DecodeJSON(context.Background(), strings.NewReader(`"just a string"`))
	assert.Error(t, err)

	_, err = DecodeJSON(context.Background(), strings.NewReader(`[{"EVENT_ID": `))
	assert.Error(t, err)
}

func TestDecodeCSV(t *testing.T) {
	input := "event_id,contractor_uei,related_entity_uei,flow_direction,event_type,event_amount,award_key,award_total_value,award_start_date\n" +
		"E1,C1,P1,outflow,SUBAWARD,\"$1,250.50\",K1,100000,2024-01-01\n" +
		",,,,,,,,\n" +
		"E2,C1,P1,OUTFLOW,SUBAWARD,oops,K2,1,2024-01-01\n" +
		"E3,C1,A1,INFLOW,PRIME,10,K3,10\n"

	decoded, err := DecodeCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, decoded.Events, 2)
	require.Len(t, decoded.Rejected, 1)

	first := decoded.Events[0]
	assert.Equal(t, model.FlowOutflow, first.FlowDirection)
	assert.InDelta(t, 1250.50, first.EventAmount, 1e-9)
	assert.Equal(t, "2024-01-01", first.AwardStartDate)

	// short rows leave missing columns empty
	assert.Equal(t, "E3", decoded.Events[1].EventID)
	assert.Empty(t, decoded.Events[1].AwardStartDate)
}

func TestDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DecodeJSON(ctx, strings.NewReader(sampleJSON))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"42", 42, false},
		{"$1,000,000.25", 1000000.25, false},
		{" -5 ", -5, false},
		{"1e3", 1000, false},
		{"n/a", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestFileSourceLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0o644))

	src := NewFileSource()
	assert.Equal(t, "EventFile", src.Name())

	evs, err := src.Load(context.Background(), &config.Config{Input: jsonPath})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "C1", evs[0].ContractorUEI)

	txtPath := filepath.Join(dir, "events.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = (&FileSource{Path: txtPath}).Load(context.Background(), nil)
	assert.ErrorContains(t, err, "unsupported events file type")

	_, err = (&FileSource{}).Load(context.Background(), &config.Config{})
	assert.Error(t, err)

	_, err = (&FileSource{Path: filepath.Join(dir, "missing.csv")}).Load(context.Background(), nil)
	assert.Error(t, err)
}
