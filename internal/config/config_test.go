package config

import "testing"

func TestDefaultWorkerCountFallsBackToHardware(t *testing.T) {
	SetConfig(Config{WorkerCount: 0})
	if got := WorkerCount(); got < 1 {
		t.Errorf("WorkerCount() = %d, want >= 1", got)
	}
}

func TestSetWorkerCountPinsValue(t *testing.T) {
	SetWorkerCount(7)
	if got := WorkerCount(); got != 7 {
		t.Errorf("WorkerCount() = %d, want 7", got)
	}
	SetConfig(Config{WorkerCount: 0})
}

func TestGetSetConfigRoundTrip(t *testing.T) {
	SetConfig(Config{WorkerCount: 3})
	if got := GetConfig().WorkerCount; got != 3 {
		t.Errorf("GetConfig().WorkerCount = %d, want 3", got)
	}
	SetConfig(Config{WorkerCount: 0})
}
