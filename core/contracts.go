package core

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

// DeliveryStore is the persisted delivery audit trail. Store failures must
// surface as log-unavailable errors: without a record there is no safe way
// to send, so the dispatcher treats a failed write as a failed dispatch.
type DeliveryStore interface {
	Create(ctx context.Context, in CreateDeliveryInput) (Delivery, error)
	// Get reports found=false for an unknown id; that is not an error.
	Get(ctx context.Context, id string) (Delivery, bool, error)
	// MarkOutcome overwrites the outcome fields of one record. It must not
	// move a delivered record back to failed.
	MarkOutcome(ctx context.Context, id string, outcome DeliveryOutcome) error
	IncrementAttempts(ctx context.Context, id string) (int, error)
	ListRetryable(ctx context.Context, filter RetryFilter) ([]Delivery, error)
	List(ctx context.Context, filter DeliveryFilter) (DeliveryPage, error)
}

// Scheduler hands a delivery id to a one-shot unit of work that runs
// independently of the caller and eventually invokes the delivery worker
// exactly once.
type Scheduler interface {
	ScheduleDelivery(ctx context.Context, deliveryID string) error
}

// ConfigSource lets the host supply fresh webhook configuration per cycle.
// Implementations must treat the returned config as read-only.
type ConfigSource interface {
	Current(ctx context.Context) (Config, error)
}

type Signer interface {
	Signature(payload []byte) (string, error)
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type DeliverFunc func(ctx context.Context, deliveryID string) (Delivery, error)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}
