package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/minioncrypt/constants"
	"www.velocidex.com/golang/minioncrypt/crypto"
)

var (
	sign_command = app.Command("sign", "Sign a file with this node's private key.")
	sign_file    = sign_command.Arg("file", "The file to sign.").
			Required().ExistingFile()
	sign_key = sign_command.Flag("key",
		"Private key to sign with (default {pki_dir}/{key_name}.pem).").String()

	verify_command   = app.Command("verify", "Verify a file's signature.")
	verify_file      = verify_command.Arg("file", "The signed file.").Required().ExistingFile()
	verify_signature = verify_command.Arg("signature", "Base64 encoded signature.").
				Required().String()
	verify_identity = verify_command.Flag("identity",
		"Verify with {pki_dir}/{identity}.pub").String()
	verify_key = verify_command.Flag("key", "Public key file to verify with.").String()
)

func doSign() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	key_path := *sign_key
	if key_path == "" {
		key_path = constants.GetPrivateKeyPath(config_obj.PkiDir, config_obj.KeyName)
	}

	message, err := os.ReadFile(*sign_file)
	if err != nil {
		return nil, err
	}

	signature, err := crypto.SignMessageFromFile(key_path, message)
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("File", *sign_file).
		Set("Signature", base64.StdEncoding.EncodeToString(signature)), nil
}

func doVerify() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	key_path := *verify_key
	if key_path == "" {
		if *verify_identity == "" {
			return nil, fmt.Errorf("One of --key or --identity is required")
		}

		err = crypto.ValidateIdentity(*verify_identity)
		if err != nil {
			return nil, err
		}
		key_path = constants.GetPublicKeyPath(config_obj.PkiDir, *verify_identity)
	}

	message, err := os.ReadFile(*verify_file)
	if err != nil {
		return nil, err
	}

	signature, err := base64.StdEncoding.DecodeString(*verify_signature)
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("File", *verify_file).
		Set("Key", key_path).
		Set("Verified", crypto.VerifySignatureFromFile(
			key_path, message, signature)), nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case sign_command.FullCommand():
			FatalIfError(sign_command, printResult(doSign))

		case verify_command.FullCommand():
			FatalIfError(verify_command, printResult(doVerify))

		default:
			return false
		}
		return true
	})
}
