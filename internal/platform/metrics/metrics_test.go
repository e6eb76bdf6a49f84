package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordPerPlugin(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementUpdate("stake", "update_voter_weight_record")
	m.IncrementUpdate("stake", "update_voter_weight_record")
	m.IncrementFailure("nft", "nft_already_voted")
	m.IncrementDuplicateRejection("nft")
	m.AddAssetsCounted("stake", 3)
	m.AddAssetsCounted("stake", 0)
	m.ObserveOperation("stake", 2*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Updates.WithLabelValues("stake", "update_voter_weight_record")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("nft", "nft_already_voted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateRejections.WithLabelValues("nft")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AssetsCounted.WithLabelValues("stake")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementUpdate("stake", "x")
		m.IncrementFailure("stake", "x")
		m.IncrementDuplicateRejection("stake")
		m.ObserveOperation("stake", time.Second)
		m.AddAssetsCounted("stake", 1)
		m.IncrementEventsPublished("ok")
	})
}
