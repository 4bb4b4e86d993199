package evalsrvc

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	verdicts []TestcaseVerdict
	errors   []JudgeError
}

func (l *recordingListener) OnVerdict(v TestcaseVerdict) {
	l.verdicts = append(l.verdicts, v)
}

func (l *recordingListener) OnJudgeError(e JudgeError) {
	l.errors = append(l.errors, e)
}

func TestDeliverDecodesVerdict(t *testing.T) {
	submID := uuid.Must(uuid.NewV7())
	body := fmt.Sprintf(`{
		"subm_uuid": "%s",
		"msg_type": "testcase_verdict",
		"testcase_index": 2,
		"status": "wrong_answer",
		"stdout": "4",
		"stderr": "",
		"cpu_millis": 120,
		"memory_kib": 2048
	}`, submID)

	listener := &recordingListener{}
	require.NoError(t, (&EvalSrvc{}).deliver(body, listener))
	require.Len(t, listener.verdicts, 1)
	require.Empty(t, listener.errors)

	v := listener.verdicts[0]
	require.Equal(t, submID, v.SubmID)
	require.Equal(t, 2, v.Index)
	require.Equal(t, StatusWrongAnswer, v.Status)
	require.Equal(t, "4", v.Stdout)
	require.Equal(t, int64(120), v.CpuMs)
	require.Equal(t, int64(2048), v.MemKiB)
}

func TestDeliverDecodesJudgeError(t *testing.T) {
	submID := uuid.Must(uuid.NewV7())
	body := fmt.Sprintf(`{
		"subm_uuid": "%s",
		"msg_type": "judge_error",
		"message": "sandbox setup failed"
	}`, submID)

	listener := &recordingListener{}
	require.NoError(t, (&EvalSrvc{}).deliver(body, listener))
	require.Empty(t, listener.verdicts)
	require.Len(t, listener.errors, 1)
	require.Equal(t, submID, listener.errors[0].SubmID)
	require.Equal(t, "sandbox setup failed", listener.errors[0].Message)
}

func TestDeliverRejectsMalformedMessages(t *testing.T) {
	submID := uuid.Must(uuid.NewV7())
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"bad subm uuid", `{"subm_uuid": "not-a-uuid", "msg_type": "testcase_verdict"}`},
		{"unknown msg type", fmt.Sprintf(`{"subm_uuid": "%s", "msg_type": "heartbeat"}`, submID)},
		{"missing msg type", fmt.Sprintf(`{"subm_uuid": "%s"}`, submID)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			listener := &recordingListener{}
			require.Error(t, (&EvalSrvc{}).deliver(tc.body, listener))
			require.Empty(t, listener.verdicts)
			require.Empty(t, listener.errors)
		})
	}
}
