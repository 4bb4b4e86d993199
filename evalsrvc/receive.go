package evalsrvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

const (
	msgTypeTestcaseVerdict = "testcase_verdict"
	msgTypeJudgeError      = "judge_error"
)

type wireHeader struct {
	SubmUuid string `json:"subm_uuid"`
	MsgType  string `json:"msg_type"`
}

type wireVerdict struct {
	wireHeader
	TestcaseIndex int    `json:"testcase_index"`
	Status        string `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CpuMillis     int64  `json:"cpu_millis"`
	MemoryKiB     int64  `json:"memory_kib"`
}

type wireJudgeError struct {
	wireHeader
	Message string `json:"message"`
}

// StartReceiving long-polls the response queue until the context is
// cancelled, delivering parsed judge output to the listener. Messages are
// acknowledged only after the listener returns, so a crash re-delivers
// them; listeners are idempotent per testcase index.
func (e *EvalSrvc) StartReceiving(ctx context.Context, listener Listener) {
	logger := slog.Default().With("module", "evalsrvc")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		output, err := e.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(e.resSqsUrl),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     5,
		})
		if err != nil {
			logger.Error("failed to receive judge messages", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		for _, msg := range output.Messages {
			if msg.Body == nil || msg.ReceiptHandle == nil {
				continue
			}
			if err := e.deliver(*msg.Body, listener); err != nil {
				logger.Error("failed to process judge message", "error", err)
				continue
			}
			if err := e.ack(ctx, *msg.ReceiptHandle); err != nil {
				logger.Error("failed to ack judge message", "error", err)
			}
		}
	}
}

func (e *EvalSrvc) deliver(body string, listener Listener) error {
	var header wireHeader
	if err := json.Unmarshal([]byte(body), &header); err != nil {
		return fmt.Errorf("failed to unmarshal message header: %w", err)
	}

	submID, err := uuid.Parse(header.SubmUuid)
	if err != nil {
		return fmt.Errorf("failed to parse subm_uuid: %w", err)
	}

	switch header.MsgType {
	case msgTypeTestcaseVerdict:
		var v wireVerdict
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return fmt.Errorf("failed to unmarshal %s message: %w", header.MsgType, err)
		}
		listener.OnVerdict(TestcaseVerdict{
			SubmID: submID,
			Index:  v.TestcaseIndex,
			Status: TestcaseStatus(v.Status),
			Stdout: v.Stdout,
			Stderr: v.Stderr,
			CpuMs:  v.CpuMillis,
			MemKiB: v.MemoryKiB,
		})
	case msgTypeJudgeError:
		var je wireJudgeError
		if err := json.Unmarshal([]byte(body), &je); err != nil {
			return fmt.Errorf("failed to unmarshal %s message: %w", header.MsgType, err)
		}
		listener.OnJudgeError(JudgeError{
			SubmID:  submID,
			Message: je.Message,
		})
	default:
		return fmt.Errorf("unknown message type: %s", header.MsgType)
	}
	return nil
}

func (e *EvalSrvc) ack(ctx context.Context, handle string) error {
	_, err := e.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(e.resSqsUrl),
		ReceiptHandle: aws.String(handle),
	})
	return err
}
