package fields

import (
	"fmt"
	"sort"
)

// Field type groups, as shown in the column type picker.
const (
	GroupText       = "Text"
	GroupSelect     = "Select"
	GroupNumeric    = "Numeric"
	GroupDateTime   = "Date & Time"
	GroupFile       = "File"
	GroupCode       = "Code"
	GroupAudit      = "Audit"
	GroupConnection = "Connection"
	GroupCloud      = "Cloud Function"
	GroupMetadata   = "Metadata"
)

// EncodeFunc renders a non-empty cell value as clipboard text.
type EncodeFunc func(c *Codec, value any, col ColumnConfig) (string, error)

// AdjustFunc post-processes a value produced by the first decode stage.
type AdjustFunc func(value any, col ColumnConfig) any

// Spec is one row of the dispatch table.
type Spec struct {
	Type     FieldType
	Group    string
	DataType DataType

	// Copy and Paste are the capability flags. Cut shares the Copy gate.
	Copy  bool
	Paste bool

	// CutDeletes is false for values the user cannot clear (audit fields,
	// checkbox). Cutting those only copies.
	CutDeletes bool

	// Encode is nil for plain pass-through rendering.
	Encode EncodeFunc

	// Adjust is nil when decoded values are stored as parsed.
	Adjust AdjustFunc
}

// Registry is an immutable lookup table of field type specs.
type Registry struct {
	specs map[FieldType]Spec
	order []FieldType
}

// NewRegistry builds a registry. Duplicate or empty types are an error.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{
		specs: make(map[FieldType]Spec, len(specs)),
		order: make([]FieldType, 0, len(specs)),
	}
	for _, s := range specs {
		if s.Type == "" {
			return nil, fmt.Errorf("field spec with empty type")
		}
		if _, exists := r.specs[s.Type]; exists {
			return nil, fmt.Errorf("field type registered twice: %s", s.Type)
		}
		r.specs[s.Type] = s
		r.order = append(r.order, s.Type)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error.
func MustRegistry(specs ...Spec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the spec for t.
func (r *Registry) Lookup(t FieldType) (Spec, bool) {
	s, ok := r.specs[t]
	return s, ok
}

// IsCopyable reports whether cells of type t may be copied or cut.
func (r *Registry) IsCopyable(t FieldType) bool {
	s, ok := r.specs[t]
	return ok && s.Copy
}

// IsPasteable reports whether text may be pasted into cells of type t.
func (r *Registry) IsPasteable(t FieldType) bool {
	s, ok := r.specs[t]
	return ok && s.Paste
}

// IsCutDeletable reports whether a cut clears cells of type t.
func (r *Registry) IsCutDeletable(t FieldType) bool {
	s, ok := r.specs[t]
	return ok && s.CutDeletes
}

// DataTypeOf returns the declared data type of t, or "" for unknown types.
func (r *Registry) DataTypeOf(t FieldType) DataType {
	return r.specs[t].DataType
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []FieldType {
	out := make([]FieldType, len(r.order))
	copy(out, r.order)
	return out
}

// Copyable returns the copy capability set, sorted.
func (r *Registry) Copyable() []FieldType {
	return r.filter(func(s Spec) bool { return s.Copy })
}

// Pasteable returns the paste capability set, sorted.
func (r *Registry) Pasteable() []FieldType {
	return r.filter(func(s Spec) bool { return s.Paste })
}

func (r *Registry) filter(keep func(Spec) bool) []FieldType {
	var out []FieldType
	for _, t := range r.order {
		if keep(r.specs[t]) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultRegistry holds every built-in field type.
var DefaultRegistry = MustRegistry(defaultSpecs...)

// Structured data type markers for types pasted as JSON or not pasteable at all.
const (
	dataAny        DataType = "any"
	dataArray      DataType = "string[]"
	dataObject     DataType = "Record<string, any>"
	dataTimestamp  DataType = "firebase.firestore.Timestamp"
	dataGeoPoint   DataType = "{latitude:number; longitude:number}"
	dataDuration   DataType = "{start:Timestamp; end:Timestamp}"
	dataFiles      DataType = "{downloadURL:string; lastModifiedTS:number; name:string; type:string}[]"
	dataAuditUser  DataType = "{displayName:string; email:string; uid:string; timestamp:Timestamp}"
	dataReference  DataType = "DocumentReference"
	dataRowArray   DataType = "Record<string, any>[]"
	dataUnderlying DataType = "undefined"
)

var defaultSpecs = []Spec{
	// TEXT
	{Type: ShortText, Group: GroupText, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},
	{Type: LongText, Group: GroupText, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},
	{Type: RichText, Group: GroupText, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},
	{Type: Email, Group: GroupText, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},
	{Type: Phone, Group: GroupText, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},
	{Type: URL, Group: GroupText, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},

	// SELECT
	{Type: SingleSelect, Group: GroupSelect, DataType: DataString, Copy: true, CutDeletes: true},
	{Type: MultiSelect, Group: GroupSelect, DataType: dataArray, Copy: true, CutDeletes: true},

	// NUMERIC
	{Type: Checkbox, Group: GroupNumeric, DataType: DataBoolean, Copy: true},
	{Type: Number, Group: GroupNumeric, DataType: DataNumber, Copy: true, Paste: true, CutDeletes: true},
	{Type: Percentage, Group: GroupNumeric, DataType: DataNumber, Copy: true, Paste: true, CutDeletes: true,
		Encode: encodePercentage, Adjust: adjustPercentage},
	{Type: Rating, Group: GroupNumeric, DataType: DataNumber, Copy: true, Paste: true, CutDeletes: true,
		Adjust: adjustRating},
	{Type: Slider, Group: GroupNumeric, DataType: DataNumber, Copy: true, Paste: true, CutDeletes: true,
		Adjust: adjustSlider},
	{Type: Color, Group: GroupNumeric, DataType: dataObject, Copy: true, CutDeletes: true, Encode: encodeJSON},
	{Type: GeoPoint, Group: GroupNumeric, DataType: dataGeoPoint, Copy: true, CutDeletes: true, Encode: encodeJSON},

	// DATE & TIME
	{Type: Date, Group: GroupDateTime, DataType: dataTimestamp, Copy: true, CutDeletes: true, Encode: encodeDate},
	{Type: DateTime, Group: GroupDateTime, DataType: dataTimestamp, Copy: true, CutDeletes: true, Encode: encodeDateTime},
	{Type: Duration, Group: GroupDateTime, DataType: dataDuration, Copy: true, CutDeletes: true, Encode: encodeDuration},

	// FILE
	{Type: Image, Group: GroupFile, DataType: dataFiles, Copy: true, CutDeletes: true, Encode: encodeAttachment},
	{Type: File, Group: GroupFile, DataType: dataFiles, Copy: true, CutDeletes: true, Encode: encodeAttachment},

	// CODE
	{Type: JSON, Group: GroupCode, DataType: dataAny, Copy: true, Paste: true, CutDeletes: true, Encode: encodeJSON},
	{Type: Code, Group: GroupCode, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},
	{Type: Markdown, Group: GroupCode, DataType: DataString, Copy: true, Paste: true, CutDeletes: true},
	{Type: Array, Group: GroupCode, DataType: dataAny, Copy: true, CutDeletes: true},

	// AUDIT
	{Type: CreatedBy, Group: GroupAudit, DataType: dataAuditUser, Copy: true, Encode: encodeAuditUser},
	{Type: UpdatedBy, Group: GroupAudit, DataType: dataAuditUser, Copy: true, Encode: encodeAuditUser},
	{Type: CreatedAt, Group: GroupAudit, DataType: dataTimestamp, Copy: true, Encode: encodeDateTime},
	{Type: UpdatedAt, Group: GroupAudit, DataType: dataTimestamp, Copy: true, Encode: encodeDateTime},

	// CONNECTION, CLOUD FUNCTION, METADATA: no clipboard support
	{Type: SubTable, Group: GroupConnection, DataType: dataUnderlying},
	{Type: Reference, Group: GroupConnection, DataType: dataReference},
	{Type: ConnectTable, Group: GroupConnection, DataType: dataRowArray},
	{Type: ConnectService, Group: GroupConnection, DataType: dataRowArray},
	{Type: Connector, Group: GroupConnection, DataType: dataRowArray},
	{Type: Action, Group: GroupCloud, DataType: dataAny},
	{Type: Derivative, Group: GroupCloud, DataType: dataAny},
	{Type: Aggregate, Group: GroupCloud, DataType: dataAny},
	{Type: Formula, Group: GroupCloud, DataType: dataAny},
	{Type: Status, Group: GroupCloud, DataType: dataAny},
	{Type: User, Group: GroupMetadata, DataType: dataAuditUser},
	{Type: ID, Group: GroupMetadata, DataType: DataString},
}
