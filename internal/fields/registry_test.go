package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allFieldTypes must list every FieldType constant declared in types.go.
var allFieldTypes = []FieldType{
	ShortText, LongText, RichText, Email, Phone, URL,
	SingleSelect, MultiSelect,
	Checkbox, Number, Percentage, Rating, Slider, Color, GeoPoint,
	Date, DateTime, Duration,
	Image, File,
	JSON, Code, Markdown, Array,
	CreatedBy, UpdatedBy, CreatedAt, UpdatedAt,
	SubTable, Reference, ConnectTable, ConnectService, Connector,
	Action, Derivative, Aggregate, Formula, Status, User, ID,
}

func TestDefaultRegistry_EveryTypeHasRow(t *testing.T) {
	for _, ft := range allFieldTypes {
		spec, ok := DefaultRegistry.Lookup(ft)
		if !assert.True(t, ok, "missing registry row for %s", ft) {
			continue
		}
		assert.Equal(t, ft, spec.Type)
		assert.NotEmpty(t, spec.Group, "%s has no group", ft)
		assert.NotEmpty(t, spec.DataType, "%s has no data type", ft)
	}
	assert.Len(t, DefaultRegistry.Types(), len(allFieldTypes))
}

func TestDefaultRegistry_CopySet(t *testing.T) {
	want := []FieldType{
		ShortText, LongText, RichText, Email, Phone, URL,
		SingleSelect, MultiSelect,
		Checkbox, Number, Percentage, Rating, Slider, Color, GeoPoint,
		Date, DateTime, Duration,
		Image, File,
		JSON, Code, Markdown, Array,
		CreatedBy, UpdatedBy, CreatedAt, UpdatedAt,
	}
	assert.ElementsMatch(t, want, DefaultRegistry.Copyable())
	for _, ft := range want {
		assert.True(t, DefaultRegistry.IsCopyable(ft), ft)
	}
}

func TestDefaultRegistry_PasteSet(t *testing.T) {
	want := []FieldType{
		ShortText, LongText, RichText, Email, Phone, URL,
		Number, Percentage, Rating, Slider,
		JSON, Code, Markdown,
	}
	assert.ElementsMatch(t, want, DefaultRegistry.Pasteable())
}

func TestDefaultRegistry_CopyOnlyTypes(t *testing.T) {
	// Every pasteable type is also copyable, but not the other way round.
	for _, ft := range DefaultRegistry.Pasteable() {
		assert.True(t, DefaultRegistry.IsCopyable(ft), ft)
	}
	for _, ft := range []FieldType{Checkbox, SingleSelect, CreatedAt, GeoPoint, Date} {
		assert.True(t, DefaultRegistry.IsCopyable(ft), ft)
		assert.False(t, DefaultRegistry.IsPasteable(ft), ft)
	}
}

func TestDefaultRegistry_CutImmutable(t *testing.T) {
	immutable := map[FieldType]bool{
		CreatedAt: true, UpdatedAt: true, CreatedBy: true, UpdatedBy: true, Checkbox: true,
	}
	for _, ft := range DefaultRegistry.Copyable() {
		assert.Equal(t, !immutable[ft], DefaultRegistry.IsCutDeletable(ft), ft)
	}
}

func TestDefaultRegistry_DataTypeOf(t *testing.T) {
	tests := []struct {
		ft   FieldType
		want DataType
	}{
		{Number, DataNumber},
		{Percentage, DataNumber},
		{Rating, DataNumber},
		{Slider, DataNumber},
		{ShortText, DataString},
		{Code, DataString},
		{Checkbox, DataBoolean},
		{JSON, dataAny},
		{GeoPoint, dataGeoPoint},
	}
	for _, tt := range tests {
		t.Run(string(tt.ft), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRegistry.DataTypeOf(tt.ft))
		})
	}
	assert.True(t, DefaultRegistry.DataTypeOf(JSON).IsStructured())
	assert.False(t, DefaultRegistry.DataTypeOf(Number).IsStructured())
}

func TestRegistry_UnknownType(t *testing.T) {
	unknown := FieldType("hologram")
	assert.False(t, DefaultRegistry.IsCopyable(unknown))
	assert.False(t, DefaultRegistry.IsPasteable(unknown))
	assert.False(t, DefaultRegistry.IsCutDeletable(unknown))
	assert.Equal(t, DataType(""), DefaultRegistry.DataTypeOf(unknown))
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(Spec{Type: Number}, Spec{Type: Number})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")

	_, err = NewRegistry(Spec{})
	require.Error(t, err)

	assert.Panics(t, func() { MustRegistry(Spec{}) })
}

func TestNewRegistry_Custom(t *testing.T) {
	r, err := NewRegistry(Spec{Type: "note", DataType: DataString, Copy: true})
	require.NoError(t, err)
	assert.True(t, r.IsCopyable("note"))
	assert.False(t, r.IsPasteable("note"))
	assert.Equal(t, []FieldType{"note"}, r.Types())
}
