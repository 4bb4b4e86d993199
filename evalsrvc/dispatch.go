package evalsrvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/algoarena/backend/planglist"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

// Request is everything the judge needs to evaluate a submission. Testcase
// inputs and answers are passed either inline or as presigned download URLs.
type Request struct {
	SubmID uuid.UUID
	Code   string
	LangID string
	Tests  []TestFile

	CpuMs  int
	MemKiB int
}

type TestFile struct {
	InSha256   string
	InUrl      *string
	InContent  *string
	AnsSha256  string
	AnsUrl     *string
	AnsContent *string
}

type wireReq struct {
	SubmUuid  string `json:"subm_uuid"`
	ResSqsUrl string `json:"res_sqs_url"`

	Code     string     `json:"code"`
	Language wireLang   `json:"language"`
	Tests    []wireTest `json:"tests"`

	CpuMillis int `json:"cpu_millis"`
	MemoryKiB int `json:"memory_kib"`
}

type wireLang struct {
	LangID        string  `json:"lang_id"`
	LangName      string  `json:"lang_name"`
	CodeFname     string  `json:"code_fname"`
	CompileCmd    *string `json:"compile_cmd"`
	CompiledFname *string `json:"compiled_fname"`
	ExecCmd       string  `json:"exec_cmd"`
}

type wireTest struct {
	ID         int     `json:"id"`
	InSha256   string  `json:"in_sha256"`
	InUrl      *string `json:"in_url"`
	InContent  *string `json:"in_content"`
	AnsSha256  string  `json:"ans_sha256"`
	AnsUrl     *string `json:"ans_url"`
	AnsContent *string `json:"ans_content"`
}

// Dispatch enqueues an evaluation request for the judge. It returns the
// queue-side message id as the accepted handle; an error means the request
// never reached the queue and the caller may retry.
func (e *EvalSrvc) Dispatch(ctx context.Context, req Request) (string, error) {
	lang, err := planglist.GetProgrammingLanguageById(req.LangID)
	if err != nil {
		return "", err
	}

	tests := make([]wireTest, len(req.Tests))
	for i, t := range req.Tests {
		tests[i] = wireTest{
			ID:         i,
			InSha256:   t.InSha256,
			InUrl:      t.InUrl,
			InContent:  t.InContent,
			AnsSha256:  t.AnsSha256,
			AnsUrl:     t.AnsUrl,
			AnsContent: t.AnsContent,
		}
	}

	jsonReq, err := json.Marshal(wireReq{
		SubmUuid:  req.SubmID.String(),
		ResSqsUrl: e.resSqsUrl,
		Code:      req.Code,
		Language: wireLang{
			LangID:        lang.ID,
			LangName:      lang.FullName,
			CodeFname:     lang.CodeFilename,
			CompileCmd:    lang.CompileCmd,
			CompiledFname: lang.CompiledFilename,
			ExecCmd:       lang.ExecuteCmd,
		},
		Tests:     tests,
		CpuMillis: req.CpuMs,
		MemoryKiB: req.MemKiB,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal evaluation request: %w", err)
	}

	out, err := e.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(e.submSqsUrl),
		MessageBody: aws.String(string(jsonReq)),
	})
	if err != nil {
		return "", ErrDispatchFailed().SetDebug(err)
	}

	handle := ""
	if out.MessageId != nil {
		handle = *out.MessageId
	}
	return handle, nil
}
