package resource

// Resource is a typed record stored in a registry.
//
// The ID is unique within a store and stable for the resource's
// lifetime. The Type never changes after creation. Data holds all
// protocol-visible fields; the store treats it opaquely except for the
// well-known "id", "type" and "version" fields which are kept in sync
// with the record itself.
type Resource struct {
	ID      string  `json:"id"`
	Type    Type    `json:"type"`
	Data    Data    `json:"data"`
	Version Version `json:"version"`
}

// New creates a resource of the given type with the supplied document.
// The id and version fields inside Data are synchronised with the
// record so that serialised documents are self-describing.
func New(id string, t Type, data Data) *Resource {
	if data == nil {
		data = Data{}
	}
	r := &Resource{
		ID:      id,
		Type:    t,
		Data:    data,
		Version: NewVersion(),
	}
	r.Data["id"] = id
	r.Data["version"] = r.Version.String()
	return r
}

// BumpVersion assigns a fresh, strictly greater version token and
// mirrors it into the document.
func (r *Resource) BumpVersion() {
	r.Version = NewVersion()
	r.Data["version"] = r.Version.String()
}

// DeepCopy creates a complete independent copy of the Resource.
// The Data document is cloned recursively so modifications to the copy
// do not affect the original.
func (r *Resource) DeepCopy() *Resource {
	if r == nil {
		return nil
	}
	cpy := *r
	cpy.Data = DeepCopyData(r.Data)
	return &cpy
}

// Data holds a resource's protocol-visible fields as a JSON map.
//
// Examples:
//   - sender: {"flow_id": "...", "device_id": "...", "transport": "urn:x-nmos:transport:rtp"}
//   - events source: {"state": {"payload": {"value": 220, "scale": 10}}}
type Data map[string]any

// Object returns the nested object stored under key, or nil if the key
// is missing or not an object.
func (d Data) Object(key string) Data {
	if d == nil {
		return nil
	}
	switch v := d[key].(type) {
	case Data:
		return v
	case map[string]any:
		return Data(v)
	default:
		return nil
	}
}

// String returns the string stored under key, or "" if missing or not
// a string.
func (d Data) String(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}

// Bool returns the boolean stored under key, or false if missing or
// not a boolean.
func (d Data) Bool(key string) bool {
	if d == nil {
		return false
	}
	b, _ := d[key].(bool)
	return b
}

// Array returns the slice stored under key, or nil if missing or not
// an array.
func (d Data) Array(key string) []any {
	if d == nil {
		return nil
	}
	a, _ := d[key].([]any)
	return a
}

// DeepCopyData creates a deep copy of a document.
// Nested maps and slices are recursively copied.
func DeepCopyData(d Data) Data {
	if d == nil {
		return nil
	}
	cpy := make(Data, len(d))
	for k, v := range d {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case Data:
		return DeepCopyData(val)
	case map[string]any:
		return DeepCopyData(Data(val))
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy by value
		return v
	}
}

// Type classifies a resource within the registries.
type Type string

// Type constants for the closed set of resource classifications.
const (
	TypeNode               Type = "node"
	TypeDevice             Type = "device"
	TypeSource             Type = "source"
	TypeFlow               Type = "flow"
	TypeSender             Type = "sender"
	TypeReceiver           Type = "receiver"
	TypeSubscription       Type = "subscription"
	TypeConnectionSender   Type = "connection_sender"
	TypeConnectionReceiver Type = "connection_receiver"
	TypeEventsSource       Type = "events_source"
)

// AllTypes returns all valid resource type values.
func AllTypes() []Type {
	return []Type{
		TypeNode, TypeDevice, TypeSource, TypeFlow, TypeSender,
		TypeReceiver, TypeSubscription, TypeConnectionSender,
		TypeConnectionReceiver, TypeEventsSource,
	}
}

// Valid reports whether t is one of the known resource types.
func (t Type) Valid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}
