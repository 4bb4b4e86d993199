package evalsrvc

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// EvalSrvc is the boundary to the external code-execution judge. Dispatch
// pushes evaluation requests onto the judge's submission queue; the judge
// reports per-testcase verdicts asynchronously on the response queue, which
// StartReceiving consumes. The judge itself is a black box.
type EvalSrvc struct {
	sqsClient *sqs.Client

	submSqsUrl string // judge-bound evaluation requests
	resSqsUrl  string // judge-produced verdicts
}

func NewEvalSrvc() (*EvalSrvc, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("eu-central-1"),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 10)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	submQueueUrl := os.Getenv("SUBM_SQS_QUEUE_URL")
	if submQueueUrl == "" {
		return nil, fmt.Errorf("SUBM_SQS_QUEUE_URL is not set")
	}

	responseSqsUrl := os.Getenv("RESPONSE_SQS_URL")
	if responseSqsUrl == "" {
		return nil, fmt.Errorf("RESPONSE_SQS_URL is not set")
	}

	return &EvalSrvc{
		sqsClient:  sqs.NewFromConfig(cfg),
		submSqsUrl: submQueueUrl,
		resSqsUrl:  responseSqsUrl,
	}, nil
}
