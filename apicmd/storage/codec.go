package storage

import "github.com/vmihailenco/msgpack/v5"

// Serialize encodes a record for storage.
func Serialize(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Deserialize decodes a stored record into v.
func Deserialize(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
