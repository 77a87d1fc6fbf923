package models

import (
	"strings"
	"testing"
)

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "valid",
			doc: `{"portfolio":[{"id":"p1"}],"crew":[{"id":"c1"}],
				"pages":[{"slug":"home","blocks":[{"type":"portfolio","ref":"p1"},{"type":"crew","ref":"c1"},{"type":"contact"}]}]}`,
		},
		{
			name:    "malformed json",
			doc:     `{"pages":`,
			wantErr: "decode content seed",
		},
		{
			name:    "dangling reference",
			doc:     `{"pages":[{"slug":"home","blocks":[{"type":"portfolio","ref":"p9"}]}]}`,
			wantErr: `unknown portfolio reference "p9"`,
		},
		{
			name:    "reference of the wrong type",
			doc:     `{"crew":[{"id":"c1"}],"pages":[{"slug":"home","blocks":[{"type":"portfolio","ref":"c1"}]}]}`,
			wantErr: "unknown portfolio reference",
		},
		{
			name:    "unknown block type",
			doc:     `{"pages":[{"slug":"home","blocks":[{"type":"video"}]}]}`,
			wantErr: `unknown type "video"`,
		},
		{
			name:    "duplicate slug",
			doc:     `{"pages":[{"slug":"home"},{"slug":"home"}]}`,
			wantErr: "duplicate page slug",
		},
		{
			name:    "missing slug",
			doc:     `{"pages":[{"id":"x"}]}`,
			wantErr: "has no slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.doc))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
