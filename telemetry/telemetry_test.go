package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/satishbabariya/joinsql/telemetry"
)

func TestRecordPlan(t *testing.T) {
	before := testutil.ToFloat64(telemetry.StatementsPlanned.WithLabelValues(telemetry.KindCount))
	telemetry.RecordPlan(telemetry.KindCount, time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.StatementsPlanned.WithLabelValues(telemetry.KindCount)))
}

func TestRecordExecution(t *testing.T) {
	ok := testutil.ToFloat64(telemetry.StatementsExecuted.WithLabelValues("ok"))
	failed := testutil.ToFloat64(telemetry.StatementsExecuted.WithLabelValues("error"))

	telemetry.RecordExecution(nil)
	telemetry.RecordExecution(errors.New("boom"))
	telemetry.RecordExecution(errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(telemetry.StatementsExecuted.WithLabelValues("ok")))
	assert.Equal(t, failed+2, testutil.ToFloat64(telemetry.StatementsExecuted.WithLabelValues("error")))
}

func TestRecordFailure(t *testing.T) {
	before := testutil.ToFloat64(telemetry.TranslationFailures.WithLabelValues("natural_order"))
	telemetry.RecordFailure("natural_order")
	assert.Equal(t, before+1, testutil.ToFloat64(telemetry.TranslationFailures.WithLabelValues("natural_order")))
}
