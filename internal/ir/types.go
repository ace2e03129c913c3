package ir

// FieldType is the declared type of a schema field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldFloat  FieldType = "float"
	FieldBool   FieldType = "bool"
)

// ValidFieldTypes defines allowed field types.
var ValidFieldTypes = map[FieldType]bool{
	FieldString: true,
	FieldInt:    true,
	FieldFloat:  true,
	FieldBool:   true,
}

// IsNumeric reports whether fields of this type compare numerically.
func (t FieldType) IsNumeric() bool {
	return t == FieldInt || t == FieldFloat
}

// EntitySchema describes one record type and the table that stores it.
type EntitySchema struct {
	Name   string      `json:"name"`   // "Movie", "Customer"
	Table  string      `json:"table"`  // "movies"
	Fields []FieldSpec `json:"fields"` // declaration order
}

// FieldSpec describes one field of an entity.
type FieldSpec struct {
	Name   string    `json:"name"`   // key used by criteria, e.g. "releaseYear"
	Column string    `json:"column"` // SQL column, e.g. "release_year"
	Type   FieldType `json:"type"`
}

// Field looks up a field by its criteria key.
func (s *EntitySchema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldNames returns field keys in declaration order.
func (s *EntitySchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Record is one stored row. ID is assigned by the store.
type Record struct {
	ID     int64    `json:"id"`
	Fields IRObject `json:"fields"`
}

// Get returns the value of a field, or IRNull when the field is absent.
func (r Record) Get(name string) IRValue {
	if v, ok := r.Fields[name]; ok && v != nil {
		return v
	}
	return IRNull{}
}

// Sort is a single ORDER BY directive. The core never interprets it.
type Sort struct {
	Field string `json:"field" yaml:"field"`
	Desc  bool   `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// PageRequest selects a zero-based page of a result set.
type PageRequest struct {
	Index int `json:"index" yaml:"index" validate:"gte=0"`
	Size  int `json:"size" yaml:"size" validate:"gte=1"`
}

// Offset returns the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return p.Index * p.Size
}

// Page is one page of results plus the total number of matches.
type Page struct {
	Records []Record `json:"records"`
	Total   int64    `json:"total"`
	Index   int      `json:"index"`
	Size    int      `json:"size"`
}

// TotalPages returns the number of pages needed to hold Total records.
func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}
