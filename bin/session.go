package main

import (
	"encoding/base64"
	"os"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/minioncrypt/crypto"
)

var (
	session_command  = app.Command("session", "Session keys and envelopes.")
	session_generate = session_command.Command("generate", "Generate a new session key.")

	encrypt_command = session_command.Command("encrypt",
		"Encrypt a file into an authenticated envelope.")
	encrypt_key = encrypt_command.Flag("session_key", "The session key.").
			Required().String()
	encrypt_file = encrypt_command.Arg("file", "The file to encrypt.").
			Required().ExistingFile()

	decrypt_command = session_command.Command("decrypt",
		"Verify and decrypt a base64 encoded envelope.")
	decrypt_key = decrypt_command.Flag("session_key", "The session key.").
			Required().String()
	decrypt_envelope = decrypt_command.Arg("envelope", "Base64 encoded envelope.").
				Required().String()
)

func doSessionGenerate() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	session_key, err := crypto.GenerateSessionKey(config_obj.AesKeySize)
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().Set("SessionKey", string(session_key)), nil
}

func doEncrypt() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	plain_text, err := os.ReadFile(*encrypt_file)
	if err != nil {
		return nil, err
	}

	keys, err := crypto.ParseSessionKey([]byte(*encrypt_key), config_obj.AesKeySize)
	if err != nil {
		return nil, err
	}
	defer keys.Zero()

	envelope, err := crypto.Encrypt(plain_text, keys, config_obj.BlockSize)
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("File", *encrypt_file).
		Set("Envelope", base64.StdEncoding.EncodeToString(envelope)), nil
}

func doDecrypt() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	envelope, err := base64.StdEncoding.DecodeString(*decrypt_envelope)
	if err != nil {
		return nil, err
	}

	keys, err := crypto.ParseSessionKey([]byte(*decrypt_key), config_obj.AesKeySize)
	if err != nil {
		return nil, err
	}
	defer keys.Zero()

	plain_text, err := crypto.Decrypt(envelope, keys,
		config_obj.MacSize, config_obj.BlockSize)
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().Set("PlainText", string(plain_text)), nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case session_generate.FullCommand():
			FatalIfError(session_generate, printResult(doSessionGenerate))

		case encrypt_command.FullCommand():
			FatalIfError(encrypt_command, printResult(doEncrypt))

		case decrypt_command.FullCommand():
			FatalIfError(decrypt_command, printResult(doDecrypt))

		default:
			return false
		}
		return true
	})
}
