package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"partyplnr/internal/common/logger"
)

func TestNew_ExportsReplyMetrics(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := New("partyplnr-test", logger.NewTestLogger(t), WithRegisterer(reg))
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "chat.Respond")
	obs.RecordReply(ctx, "matches", 3*time.Millisecond)
	span.End()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.True(t, hasFamily(names, "chat.replies"), "chat replies counter exported: %v", names)
	assert.True(t, hasFamily(names, "chat.reply.duration"), "reply duration histogram exported: %v", names)
}

func TestStartSpan_RecordsServiceSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("partyplnr-test", logger.NewTestLogger(t),
		WithRegisterer(promclient.NewRegistry()),
		WithSpanProcessor(recorder),
	)
	defer obs.Shutdown()

	_, span := obs.StartSpan(context.Background(), "chat.Respond", attribute.String("session.id", "s1"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "chat.Respond", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("session.id", "s1"))
	assert.Contains(t, ended[0].Resource().Attributes(), attribute.String("service.name", "partyplnr-test"))
}

// hasFamily accepts the exporter's dotted names as well as the
// underscore form used when name translation is enabled.
func hasFamily(names []string, instrument string) bool {
	underscored := strings.ReplaceAll(instrument, ".", "_")
	for _, n := range names {
		if strings.HasPrefix(n, instrument) || strings.HasPrefix(n, underscored) {
			return true
		}
	}
	return false
}

func TestNilObservability_IsSafe(t *testing.T) {
	var obs *Observability
	ctx, span := obs.StartSpan(context.Background(), "noop")
	obs.RecordReply(ctx, "matches", time.Millisecond)
	span.End()
	obs.Shutdown()
}
