package registry

// FieldType is the rendered input type of a configuration field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypePassword FieldType = "password"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
)

// FieldStorage names where a field value lives on the instance.
type FieldStorage string

const (
	// StorageAttribute stores the value as a first-class instance column.
	StorageAttribute FieldStorage = "attribute"
	// StorageProperties stores the value in the encrypted properties blob.
	StorageProperties FieldStorage = "properties"
	// StorageDataFields stores the value in the plaintext side table, used
	// by issue trackers to avoid re-encrypting the blob on every read.
	StorageDataFields FieldStorage = "data_fields"
)

// FieldCondition gates a field's visibility against the living instance.
// A nil condition means always visible.
type FieldCondition func(InstanceView) bool

// InstanceView is the minimal read surface a condition may inspect.
type InstanceView interface {
	Prop(name string) string
	IsActive() bool
}

// Field describes one declared configuration field of a variant.
type Field struct {
	Name        string
	Type        FieldType
	Storage     FieldStorage
	Required    bool
	Secret      bool
	APIOnly     bool
	Description string
	Placeholder string
	Choices     []string
	If          FieldCondition
}

// Visible evaluates the field's condition against an instance.
func (f Field) Visible(instance InstanceView) bool {
	if f.If == nil {
		return true
	}
	return f.If(instance)
}

// IsSecret reports whether the field must be hidden from API output.
// Password-typed fields are secret regardless of the flag.
func (f Field) IsSecret() bool {
	return f.Secret || f.Type == FieldTypePassword
}
