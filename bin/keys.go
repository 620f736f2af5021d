package main

import (
	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/minioncrypt/crypto"
)

var (
	keys_command = app.Command("keys", "Manage the node's keypair.")

	keys_generate = keys_command.Command("generate",
		"Generate a keypair unless one already exists.")
	keys_generate_dir = keys_generate.Flag("dir",
		"Directory for the keys (default pki_dir).").String()
	keys_generate_name = keys_generate.Flag("name",
		"Key name (default key_name).").String()
	keys_generate_bits = keys_generate.Flag("bits",
		"Key size in bits (default key_size).").Int()
	keys_generate_owner = keys_generate.Flag("owner",
		"User that should own the key files (default key_owner).").String()

	keys_accept = keys_command.Command("accept",
		"Accept a peer's public key into the pki directory.")
	keys_accept_identity = keys_accept.Arg("identity",
		"The peer identity.").Required().String()
	keys_accept_file = keys_accept.Arg("file",
		"The peer's public key in PEM format.").Required().ExistingFile()
)

func doKeysGenerate() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dir := config_obj.PkiDir
	if *keys_generate_dir != "" {
		dir = *keys_generate_dir
	}

	name := config_obj.KeyName
	if *keys_generate_name != "" {
		name = *keys_generate_name
	}

	bits := config_obj.KeySize
	if *keys_generate_bits > 0 {
		bits = *keys_generate_bits
	}

	owner := config_obj.KeyOwner
	if *keys_generate_owner != "" {
		owner = *keys_generate_owner
	}

	key_pair, err := crypto.NewKeyStore(config_obj).GenKeys(dir, name, bits, owner)
	if err != nil {
		return nil, err
	}

	public_key, err := crypto.LoadPublicKey(key_pair.PublicPath)
	if err != nil {
		return nil, err
	}

	result := ordereddict.NewDict().
		Set("PrivateKey", key_pair.PrivatePath).
		Set("PublicKey", key_pair.PublicPath).
		Set("Bits", public_key.N.BitLen()).
		Set("Reused", key_pair.Reused).
		Set("ClientId", crypto.ClientIDFromPublicKey(public_key))

	if key_pair.OwnerError != nil {
		result.Set("OwnerError", key_pair.OwnerError.Error())
	}

	return result, nil
}

func doKeysAccept() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	public_key, err := crypto.LoadPublicKey(*keys_accept_file)
	if err != nil {
		return nil, err
	}

	resolver := crypto.NewFilePublicKeyResolver(config_obj.PkiDir)
	defer resolver.Close()

	err = resolver.SetPublicKey(*keys_accept_identity, public_key)
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("Identity", *keys_accept_identity).
		Set("ClientId", crypto.ClientIDFromPublicKey(public_key)), nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case keys_generate.FullCommand():
			FatalIfError(keys_generate, printResult(doKeysGenerate))

		case keys_accept.FullCommand():
			FatalIfError(keys_accept, printResult(doKeysAccept))

		default:
			return false
		}
		return true
	})
}
