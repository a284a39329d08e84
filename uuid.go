package main

import (
	"encoding/hex"
	"fmt"
	"math/rand"

	"github.com/vmihailenco/msgpack/v5"
)

// UUID identifies a player for the lifetime of a session. On the wire it is
// exactly 32 hex characters, two per byte, no separators.
type UUID [16]byte

// RandomUUID draws a fresh identifier from the session RNG.
func RandomUUID(rng *rand.Rand) UUID {
	var u UUID
	rng.Read(u[:])
	return u
}

// ParseUUID decodes the 32-character hex form. Anything else is an error.
func ParseUUID(s string) (UUID, error) {
	var u UUID
	if len(s) != 32 {
		return u, fmt.Errorf("uuid: expected 32 hex characters, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("uuid: %v", err)
	}
	copy(u[:], b)
	return u, nil
}

func (u UUID) String() string {
	return hex.EncodeToString(u[:])
}

// MarshalText implements encoding.TextMarshaler, used by encoding/json for
// both values and map keys.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UUID) UnmarshalText(b []byte) error {
	parsed, err := ParseUUID(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// EncodeMsgpack keeps the hex form on the binary wire too.
func (u UUID) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(u.String())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (u *UUID) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	return u.UnmarshalText([]byte(s))
}

var (
	_ msgpack.CustomEncoder = UUID{}
	_ msgpack.CustomDecoder = (*UUID)(nil)
)
