package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency = metric.NewHistogram("1m1s")
	LinksAdded      = metric.NewCounter("10m10s")
	LinksDeleted    = metric.NewCounter("10m10s")
	CostUpdates     = metric.NewCounter("10m10s")
	BindFailures    = metric.NewCounter("10m10s")
	IPCRequests     = metric.NewCounter("10m10s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("lsd:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("lsd:LinksAdded", LinksAdded)
	expvar.Publish("lsd:LinksDeleted", LinksDeleted)
	expvar.Publish("lsd:CostUpdates", CostUpdates)
	expvar.Publish("lsd:BindFailures", BindFailures)
	expvar.Publish("lsd:IPCRequests", IPCRequests)
}
