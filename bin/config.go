package main

import (
	"fmt"

	"www.velocidex.com/golang/minioncrypt/config"
)

var (
	config_command = app.Command("config", "Manipulate the configuration.")

	config_show_command = config_command.Command("show", "Show the current config.")

	config_generate = config_command.Command("generate",
		"Generate a new config file with the defaults.")
	config_generate_output = config_generate.Flag("output",
		"Write the config here instead of stdout.").String()
	config_generate_pki_dir = config_generate.Flag("pki_dir",
		"Directory for keys.").String()
	config_generate_name = config_generate.Flag("key_name",
		"This node's identity.").String()
)

func doShowConfig() error {
	config_obj, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := config.Encode(config_obj)
	if err != nil {
		return err
	}

	fmt.Printf("%v", string(res))
	return nil
}

func doGenerateConfig() error {
	config_obj := config.GetDefaultConfig()
	if *config_generate_pki_dir != "" {
		config_obj.PkiDir = *config_generate_pki_dir
	}

	if *config_generate_name != "" {
		config_obj.KeyName = *config_generate_name
	}

	err := config.ValidateConfig(config_obj)
	if err != nil {
		return err
	}

	if *config_generate_output != "" {
		return config.WriteConfigToFile(*config_generate_output, config_obj)
	}

	res, err := config.Encode(config_obj)
	if err != nil {
		return err
	}

	fmt.Printf("%v", string(res))
	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case config_show_command.FullCommand():
			FatalIfError(config_show_command, doShowConfig)

		case config_generate.FullCommand():
			FatalIfError(config_generate, doGenerateConfig)

		default:
			return false
		}
		return true
	})
}

