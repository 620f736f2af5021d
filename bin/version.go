package main

import (
	"runtime"
	"runtime/debug"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/minioncrypt/constants"
)

var (
	version = app.Command("version", "Report the binary version and build information.")
)

func doVersion() (*ordereddict.Dict, error) {
	result := ordereddict.NewDict().
		Set("Name", "minioncrypt").
		Set("Version", constants.VERSION).
		Set("BuildTime", constants.BUILD_TIME).
		Set("Commit", constants.COMMIT_HASH).
		Set("GoVersion", runtime.Version())

	if *verbose_flag {
		info, ok := debug.ReadBuildInfo()
		if ok {
			result.Set("Module", info.Main.Path)
		}
	}
	return result, nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		if command == version.FullCommand() {
			FatalIfError(version, printResult(doVersion))
			return true
		}
		return false
	})
}
