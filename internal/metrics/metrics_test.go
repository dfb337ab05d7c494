package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestCloudWatchCount(t *testing.T) {
	mock := &mockCloudWatch{}
	cw := NewCloudWatch(mock, "Preorders", "file")
	at := time.UnixMilli(1714557600000)
	cw.nowFunc = func() time.Time { return at }

	require.NoError(t, cw.Count(context.Background(), OrdersSubmitted, 3))
	require.Len(t, mock.inputs, 1)

	in := mock.inputs[0]
	assert.Equal(t, "Preorders", *in.Namespace)
	require.Len(t, in.MetricData, 1)
	d := in.MetricData[0]
	assert.Equal(t, OrdersSubmitted, *d.MetricName)
	assert.Equal(t, cwtypes.StandardUnitCount, d.Unit)
	assert.Equal(t, 3.0, *d.Value)
	assert.Equal(t, at, *d.Timestamp)
	assert.Equal(t, "Backend", *d.Dimensions[0].Name)
	assert.Equal(t, "file", *d.Dimensions[0].Value)
}

func TestCloudWatchCount_SkipsZero(t *testing.T) {
	mock := &mockCloudWatch{}
	require.NoError(t, NewCloudWatch(mock, "ns", "file").Count(context.Background(), OrdersSynced, 0))
	assert.Empty(t, mock.inputs)
}

func TestCloudWatchCount_WrapsError(t *testing.T) {
	mock := &mockCloudWatch{err: errors.New("throttled")}
	err := NewCloudWatch(mock, "ns", "file").Count(context.Background(), OrdersDeleted, 1)
	assert.ErrorContains(t, err, "put metric OrdersDeleted")
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	assert.NoError(t, r.Count(context.Background(), OrdersSubmitted, 1))
}
