package crypto

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rsaSignCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rsa_sign_op",
		Help: "Total number of rsa signatures.",
	})

	rsaEncryptCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rsa_encrypt_op",
		Help: "Total number of rsa encryption ops.",
	})

	rsaDecryptCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rsa_decrypt_op",
		Help: "Total number of rsa decryption ops.",
	})

	rsaVerifyCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rsa_verify_op",
		Help: "Total number of rsa verify ops.",
	})

	keygenCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keygen_op",
		Help: "Key generation attempts by outcome (written, reused, failed).",
	}, []string{"outcome"})

	handshakeAcceptedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "handshake_accepted",
		Help: "Session key handshakes that produced a trusted key.",
	})

	handshakeRejectedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "handshake_rejected",
		Help: "Session key handshakes rejected, by reason.",
	}, []string{"reason"})

	macFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cipher_mac_failure",
		Help: "Envelopes dropped because the MAC did not verify.",
	})
)
