package fields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(ft FieldType, config map[string]any) ColumnConfig {
	return ColumnConfig{Key: "c", FieldName: "f", Type: ft, Config: config}
}

var sampleTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

func TestEncode_EmptyValues(t *testing.T) {
	var nilTime *time.Time
	var nilSlice []any
	for _, ft := range DefaultRegistry.Copyable() {
		for _, v := range []any{nil, "", nilTime, nilSlice} {
			got, err := Encode(v, col(ft, nil))
			require.NoError(t, err)
			assert.Equal(t, "", got, "%s %#v", ft, v)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		column ColumnConfig
		want   string
	}{
		{"percentage half", 0.5, col(Percentage, nil), "50"},
		{"percentage noise", 0.07, col(Percentage, nil), "7"},
		{"percentage int", 2, col(Percentage, nil), "200"},
		{"number", 3.14, col(Number, nil), "3.14"},
		{"number integral", 42.0, col(Number, nil), "42"},
		{"short text", "hello", col(ShortText, nil), "hello"},
		{"checkbox", true, col(Checkbox, nil), "true"},
		{"multi select", []any{"a", "b"}, col(MultiSelect, nil), "a,b"},
		{"multi select strings", []string{"x", "y"}, col(MultiSelect, nil), "x,y"},
		{"json object", map[string]any{"b": 1, "a": "x"}, col(JSON, nil), `{"a":"x","b":1}`},
		{"json string", "abc", col(JSON, nil), `"abc"`},
		{"color", map[string]any{"hex": "#fff"}, col(Color, nil), `{"hex":"#fff"}`},
		{"geo point map", map[string]any{"latitude": 1.5, "longitude": 2}, col(GeoPoint, nil), `{"latitude":1.5,"longitude":2}`},
		{"geo point struct", LatLng{Latitude: 1.5, Longitude: 2}, col(GeoPoint, nil), `{"latitude":1.5,"longitude":2}`},
		{"date", sampleTime, col(Date, nil), "2024-03-05"},
		{"date pointer", &sampleTime, col(Date, nil), "2024-03-05"},
		{"date timestamp", NewTimestamp(sampleTime), col(Date, nil), "2024-03-05"},
		{"date map", map[string]any{"seconds": float64(1709647629), "nanoseconds": 0}, col(Date, nil), "2024-03-05"},
		{"date underscore map", map[string]any{"_seconds": 1709647629}, col(Date, nil), "2024-03-05"},
		{"date custom format", sampleTime, col(Date, map[string]any{"format": "dd/MM/yyyy"}), "05/03/2024"},
		{"date strftime format", sampleTime, col(Date, map[string]any{"format": "%Y/%m/%d"}), "2024/03/05"},
		{"date bad format", sampleTime, col(Date, map[string]any{"format": "YYYY"}), ""},
		{"date not temporal", "2024-03-05", col(Date, nil), ""},
		{"date time", sampleTime, col(DateTime, nil), "2024-03-05 14:07"},
		{"created at", sampleTime, col(CreatedAt, nil), "2024-03-05 14:07"},
		{"updated at", NewTimestamp(sampleTime), col(UpdatedAt, nil), "2024-03-05 14:07"},
		{"duration", DurationValue{Start: sampleTime, End: sampleTime.Add(26*time.Hour + 3*time.Minute + 4*time.Second)}, col(Duration, nil), "1d 2h 3m 4s"},
		{"duration map", map[string]any{"start": sampleTime, "end": sampleTime.Add(65 * time.Second)}, col(Duration, nil), "1m 5s"},
		{"image", []Attachment{{DownloadURL: "https://cdn/a.png"}, {DownloadURL: "https://cdn/b.png"}}, col(Image, nil), "https://cdn/a.png"},
		{"file maps", []any{map[string]any{"downloadURL": "https://cdn/a.pdf", "name": "a.pdf"}}, col(File, nil), "https://cdn/a.pdf"},
		{"file empty list", []any{}, col(File, nil), ""},
		{"created by", AuditUser{DisplayName: "Ada"}, col(CreatedBy, nil), "Ada"},
		{"updated by map", map[string]any{"displayName": "Grace", "uid": "u1"}, col(UpdatedBy, nil), "Grace"},
		{"updated by no name", map[string]any{"uid": "u1"}, col(UpdatedBy, nil), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.value, tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_Location(t *testing.T) {
	codec := NewCodec(nil, time.FixedZone("EST", -5*3600))
	at := time.Date(2024, time.March, 5, 2, 0, 0, 0, time.UTC)

	got, err := codec.Encode(at, col(Date, nil))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", got)
	assert.Equal(t, "EST", codec.Location().String())
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		column ColumnConfig
	}{
		{"duration without end", map[string]any{"start": sampleTime}, col(Duration, nil)},
		{"duration wrong shape", 12.0, col(Duration, nil)},
		{"attachment not a list", "https://cdn/a.png", col(Image, nil)},
		{"attachment entry not an object", []any{"https://cdn/a.png"}, col(File, nil)},
		{"percentage not a number", "abc", col(Percentage, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.value, tt.column)
			var encErr *EncodeError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, tt.column.Type, encErr.Type)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		column ColumnConfig
		want   any
	}{
		{"number", "42.5", col(Number, nil), 42.5},
		{"number padded", " 7 ", col(Number, nil), 7.0},
		{"percentage", "50", col(Percentage, nil), 0.5},
		{"slider above max", "15", col(Slider, map[string]any{"min": 0, "max": 10}), 10.0},
		{"slider below min", "-3", col(Slider, map[string]any{"min": 0, "max": 10}), 0.0},
		{"slider no bounds", "1000", col(Slider, nil), 1000.0},
		{"slider only max", "-50", col(Slider, map[string]any{"max": 10}), -50.0},
		{"rating default max", "9", col(Rating, nil), 5.0},
		{"rating negative", "-1", col(Rating, nil), 0.0},
		{"rating zero max", "9", col(Rating, map[string]any{"max": 0}), 5.0},
		{"rating custom max", "9", col(Rating, map[string]any{"max": 10}), 9.0},
		{"short text verbatim", "  hi there ", col(ShortText, nil), "  hi there "},
		{"code", "fmt.Println()", col(Code, nil), "fmt.Println()"},
		{"json object", `{"a":1}`, col(JSON, nil), map[string]any{"a": 1.0}},
		{"json array", `[1,"x"]`, col(JSON, nil), []any{1.0, "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.text, tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		column ColumnConfig
		is     error
	}{
		{"number text", "abc", col(Number, nil), ErrNotANumber},
		{"number empty", "", col(Number, nil), ErrNotANumber},
		{"number NaN", "NaN", col(Rating, nil), ErrNotANumber},
		{"number infinity", "Infinity", col(Slider, nil), ErrNotANumber},
		{"number overflow", "1e400", col(Percentage, nil), ErrNotANumber},
		{"unknown type", "x", col("hologram", nil), ErrUnknownFieldType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text, tt.column)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.text, perr.Text)
		})
	}

	_, err := Decode(`{"a":`, col(JSON, nil))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, JSON, perr.Type)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		column ColumnConfig
	}{
		{"number", 3.14, col(Number, nil)},
		{"number negative", -12.0, col(Number, nil)},
		{"number tiny", 1e-7, col(Number, nil)},
		{"percentage", 0.25, col(Percentage, nil)},
		{"percentage small", 0.07, col(Percentage, nil)},
		{"percentage whole", 1.0, col(Percentage, nil)},
		{"slider", 7.5, col(Slider, map[string]any{"min": 0, "max": 10})},
		{"slider at bound", 10.0, col(Slider, map[string]any{"min": 0, "max": 10})},
		{"rating", 3.0, col(Rating, nil)},
		{"short text", "hello, world", col(ShortText, nil)},
		{"long text", "line one\nline two", col(LongText, nil)},
		{"markdown", "# Title", col(Markdown, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Encode(tt.value, tt.column)
			require.NoError(t, err)
			got, err := Decode(text, tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestTimeOf(t *testing.T) {
	_, ok := TimeOf("2024-03-05")
	assert.False(t, ok)

	_, ok = TimeOf(map[string]any{"nanoseconds": 5})
	assert.False(t, ok)

	got, ok := TimeOf(map[string]any{"seconds": 10, "nanoseconds": 5})
	require.True(t, ok)
	assert.Equal(t, time.Unix(10, 5), got)
}

func TestIsEmpty(t *testing.T) {
	var m map[string]any
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty(m))
	assert.False(t, IsEmpty(0.0))
	assert.False(t, IsEmpty(false))
	assert.False(t, IsEmpty([]any{}))
	assert.False(t, IsEmpty(" "))
}
