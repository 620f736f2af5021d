/*
   Velociraptor - Dig Deeper
   Copyright (C) 2019-2025 Rapid7 Inc.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package main

import (
	"fmt"
	"os"

	"github.com/Velocidex/ordereddict"
	"github.com/alecthomas/kingpin/v2"
	"www.velocidex.com/golang/minioncrypt/config"
	config_types "www.velocidex.com/golang/minioncrypt/config/types"
	"www.velocidex.com/golang/minioncrypt/constants"
	"www.velocidex.com/golang/minioncrypt/json"
	"www.velocidex.com/golang/minioncrypt/logging"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("minioncrypt",
		"Key management and session key exchange for masters and minions.")

	config_path = app.Flag("config", "The configuration file.").Short('c').String()

	verbose_flag = app.Flag(
		"verbose", "Enabled verbose logging.").Short('v').
		Default("false").Bool()

	logging_flag = app.Flag(
		"logfile", "Also write log messages to this file.").String()

	command_handlers []CommandHandler
)

// Config is searched for in the --config flag, then the file named by
// MINIONCRYPT_CONFIG, then the literal YAML in
// MINIONCRYPT_LITERAL_CONFIG, and finally the defaults.
func makeDefaultConfigLoader() *config.Loader {
	return (&config.Loader{}).
		WithVerbose(*verbose_flag).
		WithFileLoader(*config_path).
		WithEnvLoader(constants.MINIONCRYPT_CONFIG).
		WithLiteralLoader([]byte(os.Getenv(constants.MINIONCRYPT_LITERAL_CONFIG))).
		WithDefaultLoader().
		WithConfigMutator("LogFile", func(config_obj *config_types.Config) error {
			if *logging_flag == "" {
				return nil
			}
			if config_obj.Logging == nil {
				config_obj.Logging = &config_types.LoggingConfig{}
			}
			config_obj.Logging.File = *logging_flag
			return nil
		})
}

func loadConfig() (*config_types.Config, error) {
	config_obj, err := makeDefaultConfigLoader().LoadAndValidate()
	if err != nil {
		return nil, fmt.Errorf("Unable to load config: %w", err)
	}
	return config_obj, nil
}

// FatalIfError runs the command and exits with its error.
func FatalIfError(command *kingpin.CmdClause, cb func() error) {
	err := cb()
	kingpin.FatalIfError(err, "%s", command.FullCommand())
}

func printDict(result *ordereddict.Dict) error {
	serialized, err := json.MarshalIndent(result)
	if err != nil {
		return err
	}
	fmt.Println(string(serialized))
	return nil
}

func printResult(cb func() (*ordereddict.Dict, error)) func() error {
	return func() error {
		result, err := cb()
		if err != nil {
			return err
		}
		return printDict(result)
	}
}

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if !*verbose_flag {
		logging.SuppressLogging = true
	}

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
