package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const (
	namespace     = "SchoolRide/Backend"
	flushInterval = 60 * time.Second

	// PutMetricData accepts at most 20 datums per call
	maxDatumsPerCall = 20
)

// Recorder accepts counters and timings for backend operations
type Recorder interface {
	Count(name string, value float64, dimensions ...types.Dimension)
	Timing(name string, duration time.Duration, dimensions ...types.Dimension)
	Close()
}

// Dimension builds a CloudWatch dimension
func Dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// CloudWatchRecorder buffers datums and flushes them on an interval
type CloudWatchRecorder struct {
	client *cloudwatch.Client
	logger *zap.Logger

	mu      sync.Mutex
	pending []types.MetricDatum

	stop chan struct{}
	done chan struct{}
}

// NewCloudWatchRecorder creates a recorder and starts its flush loop
func NewCloudWatchRecorder(client *cloudwatch.Client, logger *zap.Logger) *CloudWatchRecorder {
	r := &CloudWatchRecorder{
		client: client,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.flushLoop()
	return r
}

// Count records a counter sample
func (r *CloudWatchRecorder) Count(name string, value float64, dimensions ...types.Dimension) {
	r.append(types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	})
}

// Timing records a latency sample in milliseconds
func (r *CloudWatchRecorder) Timing(name string, duration time.Duration, dimensions ...types.Dimension) {
	r.append(types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(duration.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	})
}

// Close flushes remaining datums and stops the loop
func (r *CloudWatchRecorder) Close() {
	close(r.stop)
	<-r.done
}

func (r *CloudWatchRecorder) append(datum types.MetricDatum) {
	r.mu.Lock()
	r.pending = append(r.pending, datum)
	r.mu.Unlock()
}

func (r *CloudWatchRecorder) flushLoop() {
	defer close(r.done)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush()
		case <-r.stop:
			r.flush()
			return
		}
	}
}

func (r *CloudWatchRecorder) flush() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for start := 0; start < len(pending); start += maxDatumsPerCall {
		end := start + maxDatumsPerCall
		if end > len(pending) {
			end = len(pending)
		}

		_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(namespace),
			MetricData: pending[start:end],
		})
		if err != nil {
			r.logger.Warn("Failed to publish metrics", zap.Error(err), zap.Int("datums", end-start))
		}
	}
}

// NopRecorder discards all samples. Used when metrics are disabled.
type NopRecorder struct{}

func (NopRecorder) Count(string, float64, ...types.Dimension)        {}
func (NopRecorder) Timing(string, time.Duration, ...types.Dimension) {}
func (NopRecorder) Close()                                           {}

var (
	_ Recorder = (*CloudWatchRecorder)(nil)
	_ Recorder = NopRecorder{}
)
