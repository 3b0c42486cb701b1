// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command weft compiles declarative context trees.
//
// Usage:
//
//	weft compile --tree agent.yaml
//	weft compile --tree agent.yaml --ticks 3 --output json
//	weft watch --tree agent.yaml
//	weft validate --tree agent.yaml
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kadirpekel/weft/pkg/logger"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Compile  CompileCmd  `cmd:"" help:"Compile a tree file and print the result."`
	Watch    WatchCmd    `cmd:"" help:"Recompile a tree file whenever it changes."`
	Validate ValidateCmd `cmd:"" help:"Validate a tree file without compiling."`

	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (text, json)." default:"text"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("weft version %s\n", version)
	return nil
}

func main() {
	_ = godotenv.Load()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("weft"),
		kong.Description("weft - declarative context compiler for AI agents"),
		kong.UsageOnError(),
	)

	logger.Setup(cli.LogLevel, cli.LogFormat, os.Stderr)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
