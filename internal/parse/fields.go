package parse

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// object is a decoded JSON object with the path it was found at, used to
// read required and optional fields with precise error paths.
type object struct {
	path string
	m    map[string]json.RawMessage
}

func (o object) at(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func (o object) raw(key string) (json.RawMessage, bool) {
	v, ok := o.m[key]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

func (o object) str(key string) (string, error) {
	v, ok := o.raw(key)
	if !ok {
		return "", required(o.at(key))
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", mistyped(o.at(key), "string")
	}
	return s, nil
}

func (o object) optStr(key string) (*string, error) {
	if _, ok := o.raw(key); !ok {
		return nil, nil
	}
	s, err := o.str(key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (o object) literal(key, want string) error {
	s, err := o.str(key)
	if err != nil {
		return err
	}
	if s != want {
		return mistyped(o.at(key), `"`+want+`"`)
	}
	return nil
}

func (o object) boolean(key string) (bool, error) {
	v, ok := o.raw(key)
	if !ok {
		return false, required(o.at(key))
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return false, mistyped(o.at(key), "boolean")
	}
	return b, nil
}

func (o object) optBool(key string) (*bool, error) {
	if _, ok := o.raw(key); !ok {
		return nil, nil
	}
	b, err := o.boolean(key)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (o object) object(key string) (object, error) {
	v, ok := o.raw(key)
	if !ok {
		return object{}, required(o.at(key))
	}
	return decodeObject(v, o.at(key))
}

func decodeObject(raw []byte, path string) (object, error) {
	if !gjson.ParseBytes(raw).IsObject() {
		return object{}, mistyped(path, "object")
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return object{}, mistyped(path, "object")
	}
	return object{path: path, m: m}, nil
}
