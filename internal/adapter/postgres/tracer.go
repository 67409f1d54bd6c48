package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
)

// QueryTracer implements pgx.QueryTracer to time every query.
type QueryTracer struct {
	metrics *metrics.DBMetrics
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

func NewQueryTracer(m *metrics.DBMetrics) *QueryTracer {
	return &QueryTracer{metrics: m}
}

type queryContextKey struct{}

type queryContext struct {
	startTime time.Time
	statement string
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryContextKey{}, queryContext{
		startTime: time.Now(),
		statement: statementKind(data.SQL),
	})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}

	t.metrics.QueryDuration.WithLabelValues(qctx.statement).Observe(time.Since(qctx.startTime).Seconds())
	if data.Err != nil {
		t.metrics.QueryErrors.WithLabelValues(qctx.statement).Inc()
	}
}

// statementKind reduces SQL to its leading keyword to keep label cardinality bounded.
func statementKind(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	kind := strings.ToUpper(fields[0])
	switch kind {
	case "SELECT", "INSERT", "UPDATE", "DELETE", "WITH", "BEGIN", "COMMIT", "ROLLBACK", "CREATE", "DROP", "ALTER":
		return kind
	default:
		return "other"
	}
}
