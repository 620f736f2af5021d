package main

import (
	"encoding/base64"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/minioncrypt/constants"
	"www.velocidex.com/golang/minioncrypt/crypto"
)

var (
	handshake_command = app.Command("handshake", "Session key exchange.")

	handshake_wrap = handshake_command.Command("wrap",
		"Create a signed session key payload for a peer.")
	handshake_wrap_peer = handshake_wrap.Flag("peer",
		"Identity of the receiver in the pki directory.").Required().String()
	handshake_wrap_token = handshake_wrap.Flag("token",
		"Optional token to deliver with the key.").String()
	handshake_wrap_embed = handshake_wrap.Flag("embed",
		"Embed the token in the key material.").Bool()

	handshake_unwrap = handshake_command.Command("unwrap",
		"Authenticate and unwrap a session key payload.")
	handshake_unwrap_sender = handshake_unwrap.Flag("sender",
		"Identity of the sender in the pki directory.").
		Default(constants.MASTER_KEY_NAME).String()
	handshake_unwrap_payload = handshake_unwrap.Arg("payload",
		"Base64 encoded payload.").Required().String()
)

func doHandshakeWrap() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	exchange := crypto.NewExchange(config_obj)
	defer exchange.Close()

	private_key, err := crypto.LoadPrivateKey(
		constants.GetPrivateKeyPath(config_obj.PkiDir, config_obj.KeyName))
	if err != nil {
		return nil, err
	}

	peer_key, err := exchange.Resolver().GetPublicKey(*handshake_wrap_peer)
	if err != nil {
		return nil, err
	}

	session_key, err := crypto.GenerateSessionKey(config_obj.AesKeySize)
	if err != nil {
		return nil, err
	}

	var token []byte
	if *handshake_wrap_token != "" {
		token = []byte(*handshake_wrap_token)
	}

	payload, err := exchange.EncryptSessionPayload(session_key, token,
		peer_key, private_key, crypto.EncryptOptions{
			EmbedToken: *handshake_wrap_embed,
		})
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("Peer", *handshake_wrap_peer).
		Set("SessionKey", string(session_key)).
		Set("Payload", base64.StdEncoding.EncodeToString(payload.Marshal())), nil
}

func doHandshakeUnwrap() (*ordereddict.Dict, error) {
	config_obj, err := loadConfig()
	if err != nil {
		return nil, err
	}

	exchange := crypto.NewExchange(config_obj)
	defer exchange.Close()

	private_key, err := crypto.LoadPrivateKey(
		constants.GetPrivateKeyPath(config_obj.PkiDir, config_obj.KeyName))
	if err != nil {
		return nil, err
	}

	serialized, err := base64.StdEncoding.DecodeString(*handshake_unwrap_payload)
	if err != nil {
		return nil, err
	}

	payload, err := crypto.UnmarshalSessionKeyBlob(serialized)
	if err != nil {
		return nil, err
	}

	result := exchange.DecryptSessionPayload(payload, private_key,
		*handshake_unwrap_sender, config_obj.RequireMasterTrust())
	if !result.Accepted {
		return nil, result.Err()
	}

	output := ordereddict.NewDict().
		Set("Accepted", true).
		Set("SessionKey", string(result.SessionKey)).
		Set("TokenSource", result.TokenSource.String())

	if result.TokenSource != crypto.TokenAbsent {
		output.Set("Token", string(result.Token))
	}

	return output, nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case handshake_wrap.FullCommand():
			FatalIfError(handshake_wrap, printResult(doHandshakeWrap))

		case handshake_unwrap.FullCommand():
			FatalIfError(handshake_unwrap, printResult(doHandshakeUnwrap))

		default:
			return false
		}
		return true
	})
}
