package cmd

import (
	"path/filepath"
	"testing"

	"github.com/Paintersrp/nodian/internal/config"
	"github.com/Paintersrp/nodian/internal/state"
)

func TestResolveNotePath(t *testing.T) {
	root := t.TempDir()

	st := &state.State{Config: &config.Config{}, Root: root}

	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"absolute inside root": {
			input: filepath.Join(root, "note.md"),
			want:  filepath.Join(root, "note.md"),
		},
		"relative inside root": {
			input: "daily/today.md",
			want:  filepath.Join(root, "daily", "today.md"),
		},
		"escape attempt": {
			input:   "../evil.md",
			wantErr: true,
		},
		"absolute outside root": {
			input:   filepath.Join(filepath.Dir(root), "other.md"),
			wantErr: true,
		},
		"not markdown": {
			input:   "image.png",
			wantErr: true,
		},
		"root itself": {
			input:   ".",
			wantErr: true,
		},
		"empty": {
			input:   "  ",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveNotePath(st, tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got path %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ResolveNotePath(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
