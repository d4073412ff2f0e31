package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// NewLoggingInterceptor はRPCごとに手続き名・結果コード・所要時間をログに出力します
func NewLoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"code", codeOf(err),
				"duration", time.Since(start),
			}
			if err != nil && connect.CodeOf(err) == connect.CodeInternal {
				logger.Error("rpc failed", append(attrs, "error", err)...)
			} else {
				logger.Info("rpc", attrs...)
			}
			return res, err
		}
	}
}

// NewMetricsInterceptor はRPCの件数と所要時間を記録します
func NewMetricsInterceptor(meter metric.Meter) (connect.UnaryInterceptorFunc, error) {
	requests, err := meter.Int64Counter("bookmarket.rpc.requests",
		metric.WithDescription("Number of handled RPCs"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	duration, err := meter.Float64Histogram("bookmarket.rpc.duration",
		metric.WithDescription("RPC handling time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			attrs := metric.WithAttributes(
				attribute.String("rpc.method", req.Spec().Procedure),
				attribute.String("rpc.code", codeOf(err)),
			)
			requests.Add(ctx, 1, attrs)
			duration.Record(ctx, time.Since(start).Seconds(), attrs)
			return res, err
		}
	}, nil
}

func codeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce.Code().String()
	}
	return connect.CodeUnknown.String()
}
