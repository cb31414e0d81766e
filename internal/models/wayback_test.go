package models

import (
	"errors"
	"testing"
)

func TestSnapshotRecordAccessors(t *testing.T) {
	tests := []struct {
		name         string
		record       SnapshotRecord
		wantTS       string
		wantTSOK     bool
		wantOriginal string
		wantOrigOK   bool
	}{
		{
			name:         "both fields",
			record:       SnapshotRecord{"timestamp": "20201231235959", "original": "http://example.com/"},
			wantTS:       "20201231235959",
			wantTSOK:     true,
			wantOriginal: "http://example.com/",
			wantOrigOK:   true,
		},
		{
			name:   "missing fields",
			record: SnapshotRecord{"urlkey": "com,example)/"},
		},
		{
			name:   "empty values",
			record: SnapshotRecord{"timestamp": "", "original": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := tt.record.Timestamp()
			if ts != tt.wantTS || ok != tt.wantTSOK {
				t.Errorf("Timestamp() = (%q, %v), want (%q, %v)", ts, ok, tt.wantTS, tt.wantTSOK)
			}
			orig, ok := tt.record.Original()
			if orig != tt.wantOriginal || ok != tt.wantOrigOK {
				t.Errorf("Original() = (%q, %v), want (%q, %v)", orig, ok, tt.wantOriginal, tt.wantOrigOK)
			}
		})
	}
}

func TestDownloadResultOK(t *testing.T) {
	if !(DownloadResult{Path: "snapshots/2020-12-31_23-59-59.html"}).OK() {
		t.Error("result with a path and no error should be OK")
	}
	if (DownloadResult{Err: errors.New("boom")}).OK() {
		t.Error("result with an error should not be OK")
	}
	if (DownloadResult{}).OK() {
		t.Error("result without a path should not be OK")
	}
}
