/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 16:50:20 2017 mstenber
 * Last modified: Wed Feb 13 09:04:52 2019 mstenber
 * Edit time:     31 min
 *
 */

package codec

import "github.com/golang/snappy"

// CompressingCodec compresses on the fly with snappy. If the result
// does not improve, the data is marked to be plaintext and passed
// as-is (at cost of the envelope).
type CompressingCodec struct{}

var _ Codec = &CompressingCodec{}

func (self *CompressingCodec) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	e, err := unmarshalEnvelope(data, envelopePlain, envelopeSnappy)
	if err != nil {
		return
	}
	if e.Kind == envelopePlain {
		ret = e.Data
		return
	}
	return snappy.Decode(nil, e.Data)
}

func (self *CompressingCodec) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	e := envelope{Kind: envelopeSnappy, Data: snappy.Encode(nil, data)}
	if len(e.Data) >= len(data) {
		e = envelope{Kind: envelopePlain, Data: data}
	}
	return e.marshal()
}
