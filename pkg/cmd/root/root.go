package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Paintersrp/nodian/internal/constants"
	"github.com/Paintersrp/nodian/internal/state"
	"github.com/Paintersrp/nodian/pkg/cmd/clip"
	"github.com/Paintersrp/nodian/pkg/cmd/edit"
	"github.com/Paintersrp/nodian/pkg/cmd/event"
	"github.com/Paintersrp/nodian/pkg/cmd/initialize"
	"github.com/Paintersrp/nodian/pkg/cmd/new"
	"github.com/Paintersrp/nodian/pkg/cmd/note"
	"github.com/Paintersrp/nodian/pkg/cmd/open"
	"github.com/Paintersrp/nodian/pkg/cmd/preview"
	"github.com/Paintersrp/nodian/pkg/cmd/tabs"
	"github.com/Paintersrp/nodian/pkg/cmd/tree"
	"github.com/Paintersrp/nodian/pkg/cmd/ui"
)

// flagKeys maps global flag names to the config keys they override.
var flagKeys = map[string]string{
	"root":       "root_dir",
	"log-level":  "log_level",
	"log-file":   "log_file",
	"log-format": "log_format",
}

// GlobalFlags returns the persistent flags shared by every command.
func GlobalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(constants.AppName, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}

	fs.StringP("root", "r", "", "Notes root directory (overrides root_dir)")
	fs.String("log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")
	fs.String("log-file", "", "Write logs to this file")
	fs.String("log-format", "", "Log format: text or json")
	return fs
}

// BindFlags binds the global flags in fs to their config keys in v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func NewCmdRoot(s *state.State, global *pflag.FlagSet) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "A local markdown note editor with a live preview.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			nodian edits the markdown files under your notes root with a file tree,
			a strip of open tabs and a live preview. Open tabs are remembered
			between runs.

			Run without a command to start the editor.
		`),
		SilenceUsage: true,
		RunE:         ui.NewCmdUI(s).RunE,
	}

	if global != nil {
		cmd.PersistentFlags().AddFlagSet(global)
	}

	cmd.AddCommand(
		ui.NewCmdUI(s),
		initialize.NewCmdInit(s),
		new.NewCmdNew(s),
		tree.NewCmdTree(s),
		open.NewCmdOpen(s),
		edit.NewCmdEdit(s),
		preview.NewCmdPreview(s),
		tabs.NewCmdTabs(s),
		clip.NewCmdClip(s),
		event.NewCmdEvent(s),
		note.NewCmdNote(s),
	)

	return cmd, nil
}
