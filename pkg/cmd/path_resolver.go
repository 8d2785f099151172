package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
)

const intentTimeout = 10 * time.Second

// ResolveNotePath maps a command argument to an absolute markdown path inside
// the notes root. Relative arguments are taken relative to the root, not the
// working directory.
func ResolveNotePath(s *state.State, arg string) (string, error) {
	if s == nil || s.Config == nil {
		return "", fmt.Errorf("state configuration is not initialized")
	}
	root := filepath.Clean(s.Root)
	if root == "" || root == "." {
		return "", fmt.Errorf("notes root is not configured")
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("a path argument is required")
	}

	var resolved string
	if filepath.IsAbs(arg) {
		resolved = filepath.Clean(arg)
	} else {
		resolved = filepath.Join(root, filepath.Clean(arg))
	}

	if err := ensureWithinRoot(root, resolved); err != nil {
		return "", err
	}
	if !strings.EqualFold(filepath.Ext(resolved), ".md") {
		return "", fmt.Errorf("path %q is not a markdown file", arg)
	}

	return resolved, nil
}

func ensureWithinRoot(root, resolved string) error {
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q relative to root %q: %w", resolved, root, err)
	}

	if rel == "." {
		return fmt.Errorf("path %q is the notes root", resolved)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the notes root %q", resolved, root)
	}

	return nil
}

// Apply runs intents through the session controller in order and returns the
// snapshot after the last one. It stops at the first failing intent.
func Apply(cmd *cobra.Command, s *state.State, intents ...session.Intent) (session.Snapshot, error) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	ctx, cancel := context.WithTimeout(ctx, intentTimeout)
	defer cancel()

	snap := s.Controller.Snapshot()
	for _, intent := range intents {
		var err error
		snap, err = s.Controller.Do(ctx, intent)
		if err != nil {
			return snap, fmt.Errorf("%s: %w", intent, err)
		}
	}
	return snap, nil
}
