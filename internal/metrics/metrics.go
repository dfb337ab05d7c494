// Package metrics counts order events in CloudWatch.
package metrics

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/ridersklan/preorderflow/internal/aws"
)

// Counter names.
const (
	OrdersSubmitted    = "OrdersSubmitted"
	OrderStatusUpdated = "OrderStatusUpdated"
	OrdersDeleted      = "OrdersDeleted"
	OrdersSynced       = "OrdersSynced"
)

// Recorder adds n to the named counter.
type Recorder interface {
	Count(ctx context.Context, name string, n int) error
}

// Noop discards every count.
type Noop struct{}

func (Noop) Count(context.Context, string, int) error { return nil }

// CloudWatch publishes each count as one datapoint, dimensioned by the
// storage backend in use.
type CloudWatch struct {
	client    aws.CloudWatchAPI
	namespace string
	backend   string
	nowFunc   func() time.Time
}

func NewCloudWatch(client aws.CloudWatchAPI, namespace, backend string) *CloudWatch {
	return &CloudWatch{
		client:    client,
		namespace: namespace,
		backend:   backend,
		nowFunc:   time.Now,
	}
}

func (c *CloudWatch) Count(ctx context.Context, name string, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: sdkaws.String(name),
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(float64(n)),
			Timestamp:  sdkaws.Time(c.nowFunc()),
			Dimensions: []cwtypes.Dimension{{
				Name:  sdkaws.String("Backend"),
				Value: sdkaws.String(c.backend),
			}},
		}},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}
