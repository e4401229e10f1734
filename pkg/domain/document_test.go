package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Layout(t *testing.T) {
	fixedClock(t)

	s := NewSession()
	s.StartTest("login")
	s.AddLog("clicked <button>")
	require.NoError(t, s.EndTest("passed"))
	s.Enqueue("never serialized")

	data, err := s.Document()
	require.NoError(t, err)

	expected := `{
    "type": "Session",
    "logs": [
        {
            "type": "Test",
            "name": "login",
            "logs": [
                {
                    "type": "Log",
                    "timestamp": 1700000000.5,
                    "text": "clicked <button>"
                }
            ],
            "in_process": false,
            "result": "passed"
        }
    ]
}`
	assert.Equal(t, expected, string(data))
}

func TestDocument_EmptySessionAndOpenUnit(t *testing.T) {
	s := NewSession()
	data, err := s.Document()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Session","logs":[]}`, string(data))

	s.StartStep("running")
	data, err = s.Document()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Session","logs":[{"type":"Step","name":"running","logs":[],"in_process":true,"result":null}]}`, string(data))
}

func TestDocument_Idempotent(t *testing.T) {
	s := NewSession()
	s.StartTest("t")
	s.AddLog("x")
	require.NoError(t, s.EndTest(map[string]any{"passed": 3, "failed": 0}))

	first, err := s.Document()
	require.NoError(t, err)
	second, err := s.Document()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDocument_UnencodableResult(t *testing.T) {
	s := NewSession()
	s.StartStep("bad")

	for _, result := range []any{make(chan int), math.NaN(), math.Inf(1), func() {}} {
		err := s.EndStep(result)
		assert.ErrorIs(t, err, ErrInvalidResult)
	}

	step := unit(t, s.Children[0])
	assert.True(t, step.InProcess)
	assert.Nil(t, step.Result)
	assert.Same(t, step, s.Deepest())

	_, err := s.Document()
	require.NoError(t, err)

	require.NoError(t, s.EndStep("recovered"))
	data, err := s.Document()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result": "recovered"`)
}

func TestDocument_ResultIsCopiedAtClose(t *testing.T) {
	s := NewSession()
	s.StartTest("t")
	res := map[string]any{"status": "passed", "tags": []string{"smoke"}}
	require.NoError(t, s.EndTest(res))

	before, err := s.Document()
	require.NoError(t, err)

	res["status"] = "failed"
	res["tags"].([]string)[0] = "flaky"

	after, err := s.Document()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NotContains(t, string(after), "failed")
	assert.NotContains(t, string(after), "flaky")
}

func TestDocument_ResultKeepsMarkup(t *testing.T) {
	s := NewSession()
	s.StartStep("html")
	require.NoError(t, s.EndStep("<b>&</b>"))
	s.StartStep("empty")
	require.NoError(t, s.EndStep(nil))

	data, err := s.Document()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result": "<b>&</b>"`)
	assert.Contains(t, string(data), `"result": null`)
}

func TestParseDocument(t *testing.T) {
	fixedClock(t)

	s := NewSession()
	s.StartTest("login")
	s.StartStep("fill form")
	s.AddLog("typed")
	require.NoError(t, s.EndStep("ok"))

	data, err := s.Document()
	require.NoError(t, err)

	doc, err := ParseDocument(data)
	require.NoError(t, err)
	require.Len(t, doc.Logs, 1)

	test := doc.Logs[0]
	assert.Equal(t, KindTest, test.Type)
	assert.True(t, test.Open())
	step := test.Logs[0]
	assert.False(t, step.Open())
	assert.Equal(t, "ok", step.Result)
	assert.Equal(t, now().Unix(), step.Logs[0].Time().Unix())

	_, err = ParseDocument([]byte(`{"type":"Test"}`))
	assert.Error(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "queue")
}

func TestEvent_Describe(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Type: EventTestStarted, Name: "login"}, "Test Started login"},
		{Event{Type: EventTestEnded}, "Test Ended"},
		{Event{Type: EventTestEnded, Result: "passed"}, "Test Ended passed"},
		{Event{Type: EventStepStarted, Name: "fill form"}, "Step Started fill form"},
		{Event{Type: EventStepEnded, Result: 3}, "Step Ended 3"},
		{Event{Type: EventLogAdded, Text: "typed username"}, "typed username"},
		{Event{Type: EventSessionEnded}, "Session Ended"},
	}
	for _, tt := range tests {
		t.Run(string(tt.event.Type), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Describe())
		})
	}
}

func TestDocumentNode_EncodeRoundTrip(t *testing.T) {
	fixedClock(t)

	s := NewSession()
	s.StartTest("login")
	s.StartStep("submit")
	s.AddLog("clicked <button>")
	require.NoError(t, s.EndStep(map[string]any{"ok": true}))
	s.AddLog("still running")

	data, err := s.Document()
	require.NoError(t, err)

	doc, err := ParseDocument(data)
	require.NoError(t, err)
	again, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}
