package http

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/freekieb7/hearth/http"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	connectionCnt     metric.Int64Counter
	requestCnt        metric.Int64Counter
	handlerFailureCnt metric.Int64Counter
	requestDuration   metric.Float64Histogram
	poolJobs          metric.Int64Counter
)

func init() {
	var err error
	connectionCnt, err = meter.Int64Counter("http.server.connections",
		metric.WithDescription("Accepted connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		panic(err)
	}

	requestCnt, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Responses written, by status code"),
		metric.WithUnit("{request}"))
	if err != nil {
		panic(err)
	}

	handlerFailureCnt, err = meter.Int64Counter("http.server.handler_failures",
		metric.WithDescription("Connections aborted by a failing handler"),
		metric.WithUnit("{failure}"))
	if err != nil {
		panic(err)
	}

	requestDuration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Time from accept to connection close"),
		metric.WithUnit("ms"))
	if err != nil {
		panic(err)
	}

	poolJobs, err = meter.Int64Counter("worker_pool.jobs",
		metric.WithDescription("Worker pool jobs by state"),
		metric.WithUnit("{job}"))
	if err != nil {
		panic(err)
	}
}
