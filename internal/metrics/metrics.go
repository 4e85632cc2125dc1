// Package metrics Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatTurns 对话轮次，route 为 tool、retrieval 或 failed
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of chat turns by route",
		},
		[]string{"route"},
	)

	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_invocations_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "success"},
	)

	// LLMCallDuration 单次 LLM 调用耗时，stage 为 classify、reformulate、rerank、answer
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "Duration of LLM calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"stage", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveTool 记录一次工具调用
func ObserveTool(tool string, success bool) {
	ToolInvocations.WithLabelValues(tool, strconv.FormatBool(success)).Inc()
}

// ObserveLLM 记录一次 LLM 调用耗时
func ObserveLLM(stage string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LLMCallDuration.WithLabelValues(stage, outcome).Observe(time.Since(start).Seconds())
}

// ObserveHTTP 记录一次 HTTP 请求
func ObserveHTTP(method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
