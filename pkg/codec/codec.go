// Package codec defines how sensitive columns are turned into stored strings and back.
package codec

// Codec encodes values before they are persisted and decodes them after they are read.
type Codec interface {
	Encode(plain string) (string, error)
	Decode(stored string) (string, error)
}

// Plain stores values unchanged. It is used when no encryption key is configured.
type Plain struct{}

func (Plain) Encode(plain string) (string, error)  { return plain, nil }
func (Plain) Decode(stored string) (string, error) { return stored, nil }
