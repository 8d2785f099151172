/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package initialize

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/nodian/internal/config"
	"github.com/Paintersrp/nodian/internal/state"
)

func NewCmdInit(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "initialize [root]",
		Aliases: []string{"i", "init"},
		Short:   "Write the nodian configuration.",
		Long: heredoc.Doc(`
			Write the configuration file, optionally pointing the notes root at a
			new directory. Relative roots are resolved against your home
			directory. The root is created when it does not exist.
		`),
		Example: "nodian init ~/Documents/notes",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	cmd.Flags().Bool("show", false, "Print the effective configuration and exit")
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	out := cmd.OutOrStdout()

	if show, _ := cmd.Flags().GetBool("show"); show {
		data, err := yaml.Marshal(s.Config)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s\n%s", config.GetConfigPath(s.Home), data)
		return nil
	}

	if len(args) == 1 {
		if err := s.Config.ChangeRoot(args[0]); err != nil {
			return err
		}
	} else if err := s.Config.Save(); err != nil {
		return err
	}

	root := s.Config.RootPath()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create notes root: %w", err)
	}

	fmt.Fprintf(out, "Configuration written to %s\nNotes root: %s\n", config.GetConfigPath(s.Home), root)
	return nil
}
