package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// schemaFile is the on-disk layout of a table schema file.
type schemaFile struct {
	Tables []tableSpec `yaml:"tables"`
}

type tableSpec struct {
	TableInfo `yaml:",inline"`
	Columns   []columnSpec `yaml:"columns"`
	Rows      []rowSpec    `yaml:"rows"`
}

type columnSpec struct {
	Key       string         `yaml:"key"`
	FieldName string         `yaml:"fieldName"`
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	Config    map[string]any `yaml:"config"`
}

type rowSpec struct {
	Path string         `yaml:"path"`
	Data map[string]any `yaml:"data"`
}

// ErrEmptySchema is returned for a schema file that defines no tables.
var ErrEmptySchema = errors.New("schema defines no tables")

// LoadSchemaFile reads and parses a YAML schema file.
func LoadSchemaFile(path string, reg *fields.Registry) ([]TableDefinition, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(data, reg)
}

// ParseSchema parses a YAML schema document into table definitions.
//
// Structural problems (missing keys, duplicates) are errors. Columns whose
// type is not in reg are kept and reported as warnings: such columns load
// fine but every transfer on them is refused.
func ParseSchema(data []byte, reg *fields.Registry) ([]TableDefinition, []string, error) {
	if reg == nil {
		reg = fields.DefaultRegistry
	}

	var file schemaFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, nil, ErrEmptySchema
	}

	var (
		defs     []TableDefinition
		warnings []string
		errs     []error
		seen     = make(map[string]bool)
	)
	for i, t := range file.Tables {
		if t.Key == "" {
			errs = append(errs, fmt.Errorf("tables[%d]: key is required", i))
			continue
		}
		if seen[t.Key] {
			errs = append(errs, fmt.Errorf("table %s: defined twice", t.Key))
			continue
		}
		seen[t.Key] = true

		def := TableDefinition{Info: t.TableInfo}
		if def.Info.Label == "" {
			def.Info.Label = t.Key
		}

		cols := make(map[string]bool)
		for j, c := range t.Columns {
			switch {
			case c.Key == "":
				errs = append(errs, fmt.Errorf("table %s: columns[%d]: key is required", t.Key, j))
				continue
			case cols[c.Key]:
				errs = append(errs, fmt.Errorf("table %s: column %s defined twice", t.Key, c.Key))
				continue
			case c.Type == "":
				errs = append(errs, fmt.Errorf("table %s: column %s: type is required", t.Key, c.Key))
				continue
			}
			cols[c.Key] = true

			ft := fields.FieldType(c.Type)
			if _, ok := reg.Lookup(ft); !ok {
				warnings = append(warnings, fmt.Sprintf("table %s: column %s has unknown type %q", t.Key, c.Key, c.Type))
			}
			col := fields.ColumnConfig{
				Key:       c.Key,
				FieldName: c.FieldName,
				Name:      c.Name,
				Type:      ft,
				Config:    c.Config,
			}
			if col.FieldName == "" {
				col.FieldName = c.Key
			}
			if col.Name == "" {
				col.Name = c.Key
			}
			def.Columns = append(def.Columns, col)
		}

		paths := make(map[string]bool)
		for j, r := range t.Rows {
			if r.Path == "" {
				errs = append(errs, fmt.Errorf("table %s: rows[%d]: path is required", t.Key, j))
				continue
			}
			if paths[r.Path] {
				errs = append(errs, fmt.Errorf("table %s: row %s defined twice", t.Key, r.Path))
				continue
			}
			paths[r.Path] = true
			data := r.Data
			if data == nil {
				data = map[string]any{}
			}
			def.SeedRows = append(def.SeedRows, transfer.Row{Path: r.Path, Data: data})
		}

		defs = append(defs, def)
	}

	if len(errs) > 0 {
		return nil, warnings, errors.Join(errs...)
	}
	return defs, warnings, nil
}
