package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"source.quilibrium.com/quilibrium/monorepo/vdf"
)

type codec struct {
	encode func([]byte) string
	decode func(string) ([]byte, error)
}

func codecFor(name string) (*codec, error) {
	switch name {
	case "hex":
		return &codec{encode: hex.EncodeToString, decode: hex.DecodeString}, nil
	case "base58":
		return &codec{encode: base58.Encode, decode: base58.Decode}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

func encode(b []byte) string {
	c, err := codecFor(encoding)
	if err != nil {
		panic(err)
	}

	return c.encode(b)
}

func decode(name, value string) ([]byte, error) {
	c, err := codecFor(encoding)
	if err != nil {
		return nil, err
	}

	b, err := c.decode(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}

	return b, nil
}

// decodeInput returns the encoded default element when value is empty.
func decodeInput(value string) ([]byte, error) {
	if value == "" {
		return vdf.DefaultElement(), nil
	}

	return decode("input", value)
}
