/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Tue Feb 12 14:20:51 2019 mstenber
 * Last modified: Wed Feb 13 09:03:17 2019 mstenber
 * Edit time:     26 min
 *
 */

package codec

import (
	ugorji "github.com/ugorji/go/codec"
)

type envelopeKind uint8

const (
	envelopePlain envelopeKind = iota + 1
	envelopeSnappy
	envelopeAESGCM
	envelopeCMAC
)

// envelope is the on-device framing of every codec; msgpack encoded.
type envelope struct {
	Kind envelopeKind `codec:"k"`
	Aux  []byte       `codec:"a,omitempty"` // nonce or tag
	Data []byte       `codec:"d"`
}

var msgpackHandle = &ugorji.MsgpackHandle{WriteExt: true}

func (self *envelope) marshal() (ret []byte, err error) {
	enc := ugorji.NewEncoderBytes(&ret, msgpackHandle)
	err = enc.Encode(self)
	return
}

func unmarshalEnvelope(data []byte, kinds ...envelopeKind) (e envelope, err error) {
	dec := ugorji.NewDecoderBytes(data, msgpackHandle)
	if err = dec.Decode(&e); err != nil {
		return
	}
	for _, k := range kinds {
		if e.Kind == k {
			return
		}
	}
	err = ErrUnknownEnvelope
	return
}
