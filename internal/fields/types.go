// Package fields classifies grid field types and converts cell values to and
// from their plain-text clipboard representation.
//
// Three concerns live here, all driven by one dispatch table ([Registry]):
//
//   - Capabilities: which field types may be copied, pasted, or cleared by a cut.
//   - Codec: [Codec.Encode] turns a stored cell value into clipboard text and
//     [Codec.Decode] turns pasted text back into a typed value.
//   - Constraints: bounded numeric types (slider, rating) are clamped after
//     decoding, never rejected.
//
// Adding a field type means adding one row to the registry table in
// registry.go. Types without a row are unsupported for every operation.
package fields

import "time"

// FieldType tags a column's semantic data kind.
type FieldType string

const (
	// Text
	ShortText FieldType = "shortText"
	LongText  FieldType = "longText"
	RichText  FieldType = "richText"
	Email     FieldType = "email"
	Phone     FieldType = "phone"
	URL       FieldType = "url"

	// Select
	SingleSelect FieldType = "singleSelect"
	MultiSelect  FieldType = "multiSelect"

	// Numeric
	Checkbox   FieldType = "checkbox"
	Number     FieldType = "number"
	Percentage FieldType = "percentage"
	Rating     FieldType = "rating"
	Slider     FieldType = "slider"
	Color      FieldType = "color"
	GeoPoint   FieldType = "geoPoint"

	// Date & time
	Date     FieldType = "date"
	DateTime FieldType = "dateTime"
	Duration FieldType = "duration"

	// File
	Image FieldType = "image"
	File  FieldType = "file"

	// Code
	JSON     FieldType = "json"
	Code     FieldType = "code"
	Markdown FieldType = "markdown"
	Array    FieldType = "array"

	// Audit
	CreatedBy FieldType = "createdBy"
	UpdatedBy FieldType = "updatedBy"
	CreatedAt FieldType = "createdAt"
	UpdatedAt FieldType = "updatedAt"

	// Connection and computed
	SubTable       FieldType = "subTable"
	Reference      FieldType = "reference"
	ConnectTable   FieldType = "connectTable"
	ConnectService FieldType = "connectService"
	Connector      FieldType = "connector"
	Action         FieldType = "action"
	Derivative     FieldType = "derivative"
	Aggregate      FieldType = "aggregate"
	Formula        FieldType = "formula"
	Status         FieldType = "status"
	User           FieldType = "user"
	ID             FieldType = "id"
)

// DataType is the declared storage shape of a field type. It selects the
// first-stage parse applied to pasted text.
type DataType string

const (
	DataNumber  DataType = "number"
	DataString  DataType = "string"
	DataBoolean DataType = "boolean"
)

// IsStructured reports whether pasted text for this data type is parsed as JSON.
func (d DataType) IsStructured() bool {
	return d != DataNumber && d != DataString
}

// ColumnConfig describes one grid column.
type ColumnConfig struct {
	Key       string         `json:"key" yaml:"key"`
	FieldName string         `json:"fieldName" yaml:"fieldName"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Type      FieldType      `json:"type" yaml:"type"`
	Config    map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Temporal is implemented by stored timestamp values that can produce a time.
type Temporal interface {
	ToDate() time.Time
}

// Timestamp is a seconds/nanoseconds timestamp as stored by document databases.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// ToDate implements Temporal.
func (t Timestamp) ToDate() time.Time {
	return time.Unix(t.Seconds, t.Nanoseconds)
}

// NewTimestamp converts a time to a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// Attachment is one entry of an image or file cell.
type Attachment struct {
	DownloadURL    string `json:"downloadURL"`
	Name           string `json:"name,omitempty"`
	Type           string `json:"type,omitempty"`
	LastModifiedTS int64  `json:"lastModifiedTS,omitempty"`
}

// AuditUser is the value of createdBy / updatedBy cells.
type AuditUser struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	UID         string `json:"uid,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// DurationValue is the value of duration cells.
type DurationValue struct {
	Start any `json:"start"`
	End   any `json:"end"`
}

// LatLng is the value of geoPoint cells.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
