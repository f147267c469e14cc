/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 16:48:03 2017 mstenber
 * Last modified: Wed Feb 13 09:06:11 2019 mstenber
 * Edit time:     22 min
 *
 */

package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"log"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey stretches the password into a key of the given length.
func DeriveKey(password, salt []byte, iter, length int) []byte {
	return pbkdf2.Key(password, salt, iter, length, sha256.New)
}

// EncryptingCodec is AES GCM based encrypting/decrypting (and
// authenticating) Codec. Block ids given as additionalData prevent
// swapping of blocks on the device.
type EncryptingCodec struct {
	gcm cipher.AEAD
}

var _ Codec = &EncryptingCodec{}

func (self EncryptingCodec) Init(password, salt []byte, iter int) *EncryptingCodec {
	block, err := aes.NewCipher(DeriveKey(password, salt, iter, 32))
	if err != nil {
		log.Panic(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		log.Panic(err)
	}
	self.gcm = gcm
	return &self
}

func (self *EncryptingCodec) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	e, err := unmarshalEnvelope(data, envelopeAESGCM)
	if err != nil {
		return
	}
	return self.gcm.Open(nil, e.Aux, e.Data, additionalData)
}

func (self *EncryptingCodec) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	nonce := make([]byte, self.gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return
	}
	e := envelope{Kind: envelopeAESGCM, Aux: nonce,
		Data: self.gcm.Seal(nil, nonce, data, additionalData)}
	return e.marshal()
}
