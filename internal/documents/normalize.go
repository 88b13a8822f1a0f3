package documents

import (
	"encoding/base64"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeFileBytes converts every stored representation of raw file bytes
// into a plain byte slice. Records written by older Node services may hold a
// BSON binary, an array of numbers, or a {type: "Buffer", data: [...]}
// document. Unrecognized shapes and empty payloads yield nil.
func NormalizeFileBytes(v any) []byte {
	var out []byte
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		out = t
	case primitive.Binary:
		out = t.Data
	case *primitive.Binary:
		if t == nil {
			return nil
		}
		out = t.Data
	case string:
		decoded, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil
		}
		out = decoded
	case bson.A:
		return numbersToBytes([]any(t))
	case []any:
		return numbersToBytes(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return bufferShape(m)
	case bson.M:
		return bufferShape(t)
	case map[string]any:
		return bufferShape(t)
	default:
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return append([]byte(nil), out...)
}

// bufferShape handles the Node Buffer JSON shape {type: "Buffer", data: [...]}.
func bufferShape(m map[string]any) []byte {
	data, ok := m["data"]
	if !ok {
		return nil
	}
	if typ, ok := m["type"].(string); ok && typ != "Buffer" {
		return nil
	}
	return NormalizeFileBytes(data)
}

func numbersToBytes(items []any) []byte {
	if len(items) == 0 {
		return nil
	}
	out := make([]byte, 0, len(items))
	for _, item := range items {
		n, ok := toInt(item)
		if !ok || n < 0 || n > math.MaxUint8 {
			return nil
		}
		out = append(out, byte(n))
	}
	return out
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
