// Package document describes the document types the pipeline knows about:
// where their audio lives, how to prompt the speech providers, which fields
// the extraction service must return and how the report is laid out.
package document

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

//go:embed documents.yaml
var builtin []byte

// FieldType is the expected JSON shape of an extracted field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldList    FieldType = "list"
)

func (t FieldType) valid() bool {
	switch t {
	case FieldString, FieldNumber, FieldBoolean, FieldDate, FieldList:
		return true
	}
	return false
}

// Field is one schema entry. Validate holds an optional validator tag
// applied to the value (e.g. "datetime=2006-01-02").
type Field struct {
	Name     string    `yaml:"name"`
	Label    string    `yaml:"label"`
	Type     FieldType `yaml:"type"`
	Required bool      `yaml:"required"`
	Validate string    `yaml:"validate"`
}

type Schema struct {
	Fields []Field `yaml:"fields"`
}

// Field returns the schema entry called name.
func (s Schema) Field(name string) (Field, bool) {
	return lo.Find(s.Fields, func(f Field) bool { return f.Name == name })
}

// Required returns the names of the mandatory fields in schema order.
func (s Schema) Required() []string {
	return lo.FilterMap(s.Fields, func(f Field, _ int) (string, bool) {
		return f.Name, f.Required
	})
}

type Section struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

// Template is the report layout of a document type.
type Template struct {
	Title    string    `yaml:"title"`
	Header   []string  `yaml:"header"`
	Sections []Section `yaml:"sections"`
}

// Snippets returns every template text that may hold placeholders.
func (t Template) Snippets() []string {
	out := append([]string{t.Title}, t.Header...)
	for _, s := range t.Sections {
		out = append(out, s.Heading, s.Body)
	}
	return out
}

// Definition is everything the pipeline knows about one document type.
type Definition struct {
	Type      model.DocumentType `yaml:"type"`
	Title     string             `yaml:"title"`
	Subfolder string             `yaml:"subfolder"`
	Language  string             `yaml:"language"`
	Prompt    string             `yaml:"prompt"`
	Phrases   []string           `yaml:"phrases"`
	Schema    Schema             `yaml:"schema"`
	Template  Template           `yaml:"template"`
}

// Catalog is an immutable set of document definitions.
type Catalog struct {
	defs map[model.DocumentType]*Definition
}

type catalogFile struct {
	Documents []*Definition `yaml:"documents"`
}

// Load reads the catalog from path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(builtin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read document catalog %s", path)
	}
	return Parse(data)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in document catalog is invalid: %v", err))
	}
	return c
}

// Parse decodes and checks a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse document catalog")
	}
	if len(file.Documents) == 0 {
		return nil, errors.New("document catalog is empty")
	}

	c := &Catalog{defs: make(map[model.DocumentType]*Definition, len(file.Documents))}
	for _, def := range file.Documents {
		if err := def.check(); err != nil {
			return nil, err
		}
		if _, dup := c.defs[def.Type]; dup {
			return nil, errors.Newf("document type %s defined twice", def.Type)
		}
		c.defs[def.Type] = def
	}
	return c, nil
}

// check verifies the definition is self-consistent: known field types, valid
// rules, and no template placeholder without a schema field.
func (d *Definition) check() error {
	if d.Type == "" {
		return errors.RequiredField("document type")
	}
	seen := map[string]bool{}
	for _, f := range d.Schema.Fields {
		if f.Name == "" {
			return errors.Newf("%s: schema field without a name", d.Type)
		}
		if seen[f.Name] {
			return errors.Newf("%s: schema field %s defined twice", d.Type, f.Name)
		}
		seen[f.Name] = true
		if !f.Type.valid() {
			return errors.InvalidField(fmt.Sprintf("%s.%s type", d.Type, f.Name), fmt.Sprintf("unknown type %q", f.Type))
		}
		if err := CheckRule(f.Validate); err != nil {
			return errors.InvalidField(fmt.Sprintf("%s.%s validate", d.Type, f.Name), err.Error())
		}
	}

	placeholders, err := d.Placeholders()
	if err != nil {
		return &errors.TemplateError{DocumentType: d.Type.String(), Err: err}
	}
	missing := lo.Reject(placeholders, func(p string, _ int) bool { return seen[p] })
	if len(missing) > 0 {
		return &errors.TemplateError{DocumentType: d.Type.String(), Placeholders: missing}
	}
	return nil
}

// Placeholders returns the sorted, de-duplicated field names the template
// refers to.
func (d *Definition) Placeholders() ([]string, error) {
	set := map[string]struct{}{}
	for _, snippet := range d.Template.Snippets() {
		names, err := Placeholders(snippet)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	out := lo.Keys(set)
	sort.Strings(out)
	return out, nil
}

// Lookup returns the definition of a document type. Matching is case-insensitive.
func (c *Catalog) Lookup(docType string) (*Definition, error) {
	def, ok := c.defs[model.DocumentType(strings.ToLower(strings.TrimSpace(docType)))]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownDocumentType, "%q (known: %s)", docType, strings.Join(c.names(), ", "))
	}
	return def, nil
}

// Types returns the known document types sorted by name.
func (c *Catalog) Types() []model.DocumentType {
	types := lo.Keys(c.defs)
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (c *Catalog) names() []string {
	return lo.Map(c.Types(), func(t model.DocumentType, _ int) string { return t.String() })
}
