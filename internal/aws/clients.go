package aws

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Needs says which services the configured features talk to.
type Needs struct {
	DynamoDB   bool // orders table or idempotency keys
	SQS        bool // order event queue
	CloudWatch bool
}

// Any reports whether AWS is needed at all.
func (n Needs) Any() bool { return n.DynamoDB || n.SQS || n.CloudWatch }

// Clients holds the service clients the order API uses. Services that were
// not needed stay nil.
type Clients struct {
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewClients loads the shared config once and builds the needed clients.
func NewClients(ctx context.Context, needs Needs) (*Clients, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return clientsFromConfig(cfg, needs), nil
}

func clientsFromConfig(cfg sdkaws.Config, needs Needs) *Clients {
	c := &Clients{}
	if needs.DynamoDB {
		c.DynamoDB = dynamodb.NewFromConfig(cfg)
	}
	if needs.SQS {
		c.SQS = sqs.NewFromConfig(cfg)
	}
	if needs.CloudWatch {
		c.CloudWatch = cloudwatch.NewFromConfig(cfg)
	}
	return c
}
