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
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/nodian/internal/constants"
	"github.com/Paintersrp/nodian/internal/state"
	"github.com/Paintersrp/nodian/pkg/cmd/root"
)

func Execute() {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Global flags decide where the state lives, so they are read before the
	// command tree exists. Cobra parses them again with everything else.
	global := root.GlobalFlags()
	_ = global.Parse(os.Args[1:])
	cobra.CheckErr(root.BindFlags(v, global))

	s, err := state.NewState(v)
	cobra.CheckErr(err)

	rootCmd, err := root.NewCmdRoot(s, global)
	if err != nil {
		s.Close()
		cobra.CheckErr(err)
	}

	execErr := rootCmd.Execute()
	if err := s.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown:", err)
	}
	if execErr != nil {
		os.Exit(1)
	}
}
