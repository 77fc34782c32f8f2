package jsondoc

import (
	"bytes"
	"encoding/json"

	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Members splits a JSON object into its raw members. Anything but an object,
// null included, is an error.
func Members(data []byte) (map[string]json.RawMessage, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	if members == nil {
		return nil, oops.Errorf("expected a JSON object, got null")
	}
	return members, nil
}

// Extra returns the members of the object data whose keys are not in known,
// or nil when there are none.
func Extra(data []byte, known ...string) (map[string]json.RawMessage, error) {
	members, err := Members(data)
	if err != nil {
		return nil, err
	}

	extra := lo.OmitByKeys(members, known)
	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}

// Marshal encodes fields and extra as one object with sorted keys. A field
// wins over an extra member of the same key. HTML characters stay literal.
func Marshal(extra map[string]json.RawMessage, fields map[string]any) ([]byte, error) {
	document := make(map[string]any, len(extra)+len(fields))
	for key, value := range extra {
		document[key] = value
	}
	for key, value := range fields {
		document[key] = value
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// IsNull reports whether raw is the JSON literal null
func IsNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
