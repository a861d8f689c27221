package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterOnFreshRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert := assert.New(t)
	assert.NoError(Register(reg))
	assert.Error(Register(reg))
}

func TestActionsDispatchedByType(t *testing.T) {
	before := testutil.ToFloat64(ActionsDispatched.WithLabelValues("start/stop"))
	ActionsDispatched.WithLabelValues("start/stop").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ActionsDispatched.WithLabelValues("start/stop")))
}

func TestKnownType(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("RESET_SCORE", KnownType("RESET_SCORE", true))
	assert.Equal("unrecognized", KnownType("whatever", false))
}
