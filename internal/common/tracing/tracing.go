package tracing

import (
	"fmt"
	"io"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// InitTracer 初始化 Jaeger tracer 并设为全局。
// endpoint 既可以是 agent 的 host:port，也可以是 collector 的 HTTP 地址
// （以 http 开头时走 collector 直连）。sampler 为 0-1 的恒定采样率。
func InitTracer(serviceName, endpoint string, sampler float64) (opentracing.Tracer, io.Closer, error) {
	reporter := &jaegercfg.ReporterConfig{LogSpans: true}
	if strings.HasPrefix(endpoint, "http") {
		reporter.CollectorEndpoint = endpoint
	} else {
		reporter.LocalAgentHostPort = endpoint
	}

	cfg := &jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: sampler,
		},
		Reporter: reporter,
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init jaeger tracer: %w", err)
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closer, nil
}
