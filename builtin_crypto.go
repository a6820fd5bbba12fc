// builtin_crypto.go
package vrl

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/google/uuid"
)

// registerCryptoFns installs hashing, HMAC, base64, and identifier
// generation. Hash output is lowercase hex.
func registerCryptoFns(r *Registry) {
	r.MustRegister(&Function{
		Name:   "md5",
		Params: []Param{{Name: "value", Kinds: KindString, Required: true}},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			sum := md5.Sum([]byte(c.Arg("value").Data.(string)))
			return Str(hex.EncodeToString(sum[:])), nil
		},
		Doc: "md5(value) -> string\nHex digest. Not for security use.",
	})

	r.MustRegister(&Function{
		Name: "sha2",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "variant", Kinds: KindString, Default: Str("SHA-256")},
		},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			h, err := sha2Hash(c.Arg("variant").Data.(string))
			if err != nil {
				return Null, err
			}
			h.Write([]byte(c.Arg("value").Data.(string)))
			return Str(hex.EncodeToString(h.Sum(nil))), nil
		},
		Doc: "sha2(value, variant: \"SHA-256\") -> string\nVariants: SHA-224, SHA-256, SHA-384, SHA-512.",
	})

	r.MustRegister(&Function{
		Name: "hmac",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "key", Kinds: KindString, Required: true},
			{Name: "variant", Kinds: KindString, Default: Str("SHA-256")},
		},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			newHash, err := sha2New(c.Arg("variant").Data.(string))
			if err != nil {
				return Null, err
			}
			mac := hmac.New(newHash, []byte(c.Arg("key").Data.(string)))
			mac.Write([]byte(c.Arg("value").Data.(string)))
			return Str(hex.EncodeToString(mac.Sum(nil))), nil
		},
		Doc: "hmac(value, key, variant: \"SHA-256\") -> string",
	})

	r.MustRegister(&Function{
		Name:   "encode_base64",
		Params: []Param{
			{Name: "value", Kinds: KindString, Required: true},
			{Name: "padding", Kinds: KindBool, Default: Bool(true)},
		},
		Return: Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			enc := base64.StdEncoding
			if !c.Arg("padding").Truthy() {
				enc = base64.RawStdEncoding
			}
			return Str(enc.EncodeToString([]byte(c.Arg("value").Data.(string)))), nil
		},
		Doc: "encode_base64(value, padding: true) -> string",
	})

	r.MustRegister(&Function{
		Name:     "decode_base64",
		Params:   []Param{{Name: "value", Kinds: KindString, Required: true}},
		Fallible: true,
		Return:   Returns(KindString),
		Impl: func(c FuncCall) (Value, error) {
			s := c.Arg("value").Data.(string)
			out, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				if out, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
					return Str(string(out)), nil
				}
				return Null, fmt.Errorf("decode_base64: %v", err)
			}
			return Str(string(out)), nil
		},
		Doc: "decode_base64(value) -> string\nFallible: accepts padded and unpadded input.",
	})

	r.MustRegister(&Function{
		Name:   "uuid_v4",
		Return: Returns(KindString),
		Impl: func(FuncCall) (Value, error) {
			return Str(uuid.NewString()), nil
		},
		Doc: "uuid_v4() -> string\nA random RFC 4122 version 4 identifier.",
	})
}

func sha2New(variant string) (func() hash.Hash, error) {
	switch variant {
	case "SHA-224":
		return sha256.New224, nil
	case "SHA-256":
		return sha256.New, nil
	case "SHA-384":
		return sha512.New384, nil
	case "SHA-512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("unknown SHA-2 variant %q", variant)
	}
}

func sha2Hash(variant string) (hash.Hash, error) {
	newHash, err := sha2New(variant)
	if err != nil {
		return nil, err
	}
	return newHash(), nil
}
