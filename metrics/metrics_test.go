package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"dropzone/widget"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "accepted", Result(nil))
	assert.Equal(t, "invalid_type", Result(fmt.Errorf("wrapped: %w", widget.ErrInvalidFileType)))
	assert.Equal(t, "too_large", Result(widget.ErrFileTooLarge))
	assert.Equal(t, "no_file", Result(widget.ErrNoFileSelected))
	assert.Equal(t, "malformed", Result(fmt.Errorf("size -1: %w", widget.ErrMalformedFile)))
	assert.Equal(t, "error", Result(errors.New("boom")))
}

func TestNew_CountersRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Selections.WithLabelValues("accepted").Inc()
	m.Uploads.WithLabelValues("too_large").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Uploads.WithLabelValues("too_large")))
}
