/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Tue Feb 12 15:02:33 2019 mstenber
 * Last modified: Wed Feb 13 09:10:27 2019 mstenber
 * Edit time:     19 min
 *
 */

package codec

import (
	"crypto/subtle"
	"hash"
	"log"

	"github.com/jacobsa/crypto/cmac"

	"github.com/fingon/go-blkcache/util"
)

// AuthenticatingCodec stores the data in plaintext, with an AES-CMAC
// tag over additionalData + data. It detects corruption and misplaced
// blocks on devices where encryption is not wanted.
type AuthenticatingCodec struct {
	lock util.MutexLocked
	mac  hash.Hash
}

var _ Codec = &AuthenticatingCodec{}

func (self *AuthenticatingCodec) Init(password, salt []byte, iter int) *AuthenticatingCodec {
	mac, err := cmac.New(DeriveKey(password, salt, iter, 16))
	if err != nil {
		log.Panic(err)
	}
	self.mac = mac
	return self
}

func (self *AuthenticatingCodec) tag(data, additionalData []byte) []byte {
	defer self.lock.Locked()()
	self.mac.Reset()
	self.mac.Write(additionalData)
	self.mac.Write(data)
	return self.mac.Sum(nil)
}

func (self *AuthenticatingCodec) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	e, err := unmarshalEnvelope(data, envelopeCMAC)
	if err != nil {
		return
	}
	if subtle.ConstantTimeCompare(self.tag(e.Data, additionalData), e.Aux) != 1 {
		err = ErrAuthentication
		return
	}
	ret = e.Data
	return
}

func (self *AuthenticatingCodec) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	e := envelope{Kind: envelopeCMAC, Aux: self.tag(data, additionalData), Data: data}
	return e.marshal()
}
