package observability

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// InstrumentAWS attaches X-Ray tracing to all AWS SDK calls
func InstrumentAWS(cfg *aws.Config) {
	awsv2.AWSV2Instrumentor(&cfg.APIOptions)
}

// TracingMiddleware wraps each request in an X-Ray segment
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	namer := xray.NewFixedSegmentNamer(serviceName)
	return func(next http.Handler) http.Handler {
		return xray.Handler(namer, next)
	}
}

// Capture runs fn inside a subsegment, recording any error on it
func Capture(ctx context.Context, name string, fn func(context.Context) error) error {
	return xray.Capture(ctx, name, fn)
}

// AddAnnotation attaches an indexed annotation to the current segment
func AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}
