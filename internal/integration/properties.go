package integration

import "strconv"

// Properties is the variant-specific configuration map held in the
// encrypted blob. A save always rewrites the whole map; there is no
// field-level write path.
type Properties map[string]string

// Clone returns an independent copy of the map.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for key, value := range p {
		out[key] = value
	}
	return out
}

// Properties returns the live configuration map, lazily initialized on
// first access.
func (i *Instance) Properties() Properties {
	if i.properties == nil {
		i.properties = Properties{}
	}
	return i.properties
}

// SetProperties replaces the whole map, e.g. after decrypting a loaded blob.
func (i *Instance) SetProperties(props Properties) {
	i.properties = props.Clone()
}

// Prop reads one property value.
func (i *Instance) Prop(name string) string {
	return i.Properties()[name]
}

// BoolProp reads a property as a boolean the way checkbox fields store it.
func (i *Instance) BoolProp(name string) bool {
	value, err := strconv.ParseBool(i.Prop(name))
	return err == nil && value
}

// SetProp writes one property, recording the previous value in the
// updated-properties map the first time the key is touched so a later
// commit can decide whether re-encryption is needed.
func (i *Instance) SetProp(name, value string) {
	if !i.PropTouched(name) {
		if i.updatedProperties == nil {
			i.updatedProperties = make(map[string]string)
		}
		i.updatedProperties[name] = i.Prop(name)
	}
	i.Properties()[name] = value
}

// PropTouched reports whether the property was written since the last commit.
func (i *Instance) PropTouched(name string) bool {
	_, ok := i.updatedProperties[name]
	return ok
}

// PropChanged reports whether a touched property differs from its value at
// the last commit.
func (i *Instance) PropChanged(name string) bool {
	was, ok := i.updatedProperties[name]
	return ok && was != i.Prop(name)
}

// PropWas returns the value a touched property had at the last commit.
func (i *Instance) PropWas(name string) string {
	return i.updatedProperties[name]
}

// Dirty reports whether any property changed since the last commit.
func (i *Instance) Dirty() bool {
	for name := range i.updatedProperties {
		if i.PropChanged(name) {
			return true
		}
	}
	return false
}

// ResetUpdatedProperties clears dirty tracking, called after a commit.
func (i *Instance) ResetUpdatedProperties() {
	i.updatedProperties = nil
}
