// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層から利用する。
type MetricsCollector interface {
	RecordRecommendRequest()
	RecordRecommendLatency(duration time.Duration)
	RecordRecommendCandidates(count int)
	RecordRecommendFallback(stage string)
	RecordSearchTracked(searchType string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	recommendRequests   prometheus.Counter
	recommendLatency    prometheus.Histogram
	recommendCandidates prometheus.Histogram
	recommendFallback   *prometheus.CounterVec
	searchTracked       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		recommendRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campushub_recommend_requests_total",
			Help: "グループ推薦リクエストの合計数",
		}),
		recommendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campushub_recommend_latency_seconds",
			Help:    "グループ推薦処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		recommendCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campushub_recommend_candidates",
			Help:    "推薦処理で収集した候補グループ数",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		recommendFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campushub_recommend_fallback_total",
			Help: "フォールバック段階別の推薦応答数",
		}, []string{"stage"}),
		searchTracked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campushub_search_tracked_total",
			Help: "検索種別ごとに記録された検索履歴の合計数",
		}, []string{"search_type"}),
	}

	reg.MustRegister(
		c.recommendRequests,
		c.recommendLatency,
		c.recommendCandidates,
		c.recommendFallback,
		c.searchTracked,
	)

	return c
}

// RecordRecommendRequest は推薦リクエストを記録する。
func (c *Collector) RecordRecommendRequest() {
	c.recommendRequests.Inc()
}

// RecordRecommendLatency は推薦処理のレイテンシを記録する。
func (c *Collector) RecordRecommendLatency(duration time.Duration) {
	c.recommendLatency.Observe(duration.Seconds())
}

// RecordRecommendCandidates は収集された候補グループ数を記録する。
func (c *Collector) RecordRecommendCandidates(count int) {
	c.recommendCandidates.Observe(float64(count))
}

// RecordRecommendFallback はどのフォールバック段階で応答したかを記録する。
func (c *Collector) RecordRecommendFallback(stage string) {
	c.recommendFallback.WithLabelValues(stage).Inc()
}

// RecordSearchTracked は検索履歴の記録を検索種別ごとにカウントする。
func (c *Collector) RecordSearchTracked(searchType string) {
	c.searchTracked.WithLabelValues(searchType).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
