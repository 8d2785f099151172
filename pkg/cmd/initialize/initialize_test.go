package initialize

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Paintersrp/nodian/internal/config"
	"github.com/Paintersrp/nodian/internal/state"
)

func TestInitChangesRoot(t *testing.T) {
	home := t.TempDir()
	st, err := state.New(home, viper.New())
	if err != nil {
		t.Fatalf("failed to create state: %v", err)
	}
	defer st.Close()

	var out bytes.Buffer
	cmd := NewCmdInit(st)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"journal"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init returned error: %v", err)
	}

	if info, err := os.Stat(filepath.Join(home, "journal")); err != nil || !info.IsDir() {
		t.Fatalf("expected new root directory: %v", err)
	}

	loaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.RootDir != "journal" {
		t.Fatalf("RootDir = %q, want journal", loaded.RootDir)
	}

	out.Reset()
	show := NewCmdInit(st)
	show.SetOut(&out)
	show.SetArgs([]string{"--show"})
	if err := show.Execute(); err != nil {
		t.Fatalf("init --show returned error: %v", err)
	}
	if !strings.Contains(out.String(), "root_dir: journal") {
		t.Fatalf("init --show output %q missing root", out.String())
	}
}
