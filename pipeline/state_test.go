package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"shortsbot/types"
)

func TestManagerRunLock(t *testing.T) {
	m := NewManager()
	if !m.Begin("run-1") {
		t.Fatal("first Begin should succeed")
	}
	if m.Begin("run-2") {
		t.Fatal("second Begin should fail while running")
	}
	if !m.GetState().Busy() || !m.Running() {
		t.Fatalf("state = %s; want busy", m.GetState())
	}

	m.Complete(types.RunResult{RunID: "run-1", VideoID: "abc"})
	status := m.GetStatus()
	if status.State != types.StateComplete || status.LastResult.VideoID != "abc" || status.StartedAt == nil {
		t.Fatalf("unexpected status: %+v", status)
	}

	if !m.Begin("run-2") {
		t.Fatal("Begin should succeed after Complete")
	}
	m.Fail(errors.New("boom"))
	status = m.GetStatus()
	if status.State != types.StateError || status.Error != "boom" || status.RunID != "run-2" {
		t.Fatalf("unexpected status after Fail: %+v", status)
	}
	if status.LastResult == nil || status.LastResult.RunID != "run-1" {
		t.Fatalf("last successful result lost: %+v", status.LastResult)
	}
}

func TestManagerLogRing(t *testing.T) {
	m := NewManager()
	for i := 0; i < 120; i++ {
		m.AddLog(fmt.Sprintf("line %d", i))
	}
	logs := m.GetStatus().Logs
	if len(logs) != 50 {
		t.Fatalf("kept %d logs; want 50", len(logs))
	}
	if logs[0].Message != "line 70" || logs[49].Message != "line 119" {
		t.Fatalf("ring kept wrong lines: %s .. %s", logs[0].Message, logs[49].Message)
	}

	logs[0].Message = "mutated"
	if m.GetStatus().Logs[0].Message == "mutated" {
		t.Fatal("GetStatus should return a copy")
	}
}
