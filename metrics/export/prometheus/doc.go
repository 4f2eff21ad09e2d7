// Package prometheus renders goToken metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] accepts a [goToken.Engine] and exposes an [http.Handler].
// Counter names are prefixed gotoken_*_total; the single histogram is
// gotoken_verify_latency_seconds.
//
// Nothing is registered in a global registry; callers mount the Handler.
package prometheus
