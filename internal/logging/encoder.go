package logging

import (
	"encoding/hex"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// EncodingJSONHex is the encoder name for JSON output with binary fields
// rendered as 0x-prefixed hex instead of base64.
const EncodingJSONHex = "json-hex"

type jsonHexEncoder struct {
	zapcore.Encoder
}

// NewJSONHexEncoder wraps zap's JSON encoder so that binary fields, such as
// signatures and hashes, are logged as hex.
func NewJSONHexEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &jsonHexEncoder{Encoder: zapcore.NewJSONEncoder(cfg)}
}

func (enc *jsonHexEncoder) AddBinary(key string, val []byte) {
	enc.AddString(key, "0x"+hex.EncodeToString(val))
}

func (enc *jsonHexEncoder) Clone() zapcore.Encoder {
	return &jsonHexEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *jsonHexEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	for i, f := range fields {
		if f.Type == zapcore.BinaryType {
			if b, ok := f.Interface.([]byte); ok {
				fields[i] = zap.String(f.Key, "0x"+hex.EncodeToString(b))
			}
		}
	}
	return enc.Encoder.EncodeEntry(ent, fields)
}

var registerOnce sync.Once

func registerJSONHexEncoder() error {
	var err error
	registerOnce.Do(func() {
		err = zap.RegisterEncoder(EncodingJSONHex, func(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
			return NewJSONHexEncoder(cfg), nil
		})
	})
	return err
}
