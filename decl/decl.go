// Package decl loads type declarations from YAML files.
//
// A declaration file lists types in order:
//
//	types:
//	  - enum: EFI_ALLOCATE_TYPE
//	    members: [AllocateAnyPages, AllocateMaxAddress, AllocateAddress]
//	  - typedef: EFI_STATUS
//	    type: UINTN
//	  - struct: LIST_ENTRY
//	    fields:
//	      - {name: ForwardLink, type: "*LIST_ENTRY"}
//	      - {name: BackLink, type: "*LIST_ENTRY"}
//	  - funcptr: EFI_ALLOCATE_PAGES
//	    returns: EFI_STATUS
//	    args: [EFI_ALLOCATE_TYPE, UINTN, "*UINT64"]
//
// Every struct is declared before any type is built, so pointers may refer to
// structs defined later in the file or to the struct being defined. Types used
// by value must be declared first.
package decl

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/wnxd/microbind/ctypes"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the top-level layout of a declaration file.
type File struct {
	Types []Decl `yaml:"types"`
}

// Decl declares one named type. Exactly one of Enum, Typedef, Struct, Union
// and FuncPtr is set.
type Decl struct {
	Enum    string `yaml:"enum,omitempty"`
	Typedef string `yaml:"typedef,omitempty"`
	Struct  string `yaml:"struct,omitempty"`
	Union   string `yaml:"union,omitempty"`
	FuncPtr string `yaml:"funcptr,omitempty"`

	// Members names enum members numbered from zero. Values gives explicit
	// numbers instead.
	Members []string    `yaml:"members,omitempty"`
	Values  []EnumValue `yaml:"values,omitempty"`
	Type    string      `yaml:"type,omitempty"`
	Fields  []FieldDecl `yaml:"fields,omitempty"`
	Returns string      `yaml:"returns,omitempty"`
	Args    []string    `yaml:"args,omitempty"`
}

type EnumValue struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

type FieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Kind returns the declaration keyword and the declared name.
func (d *Decl) Kind() (kind, name string) {
	for _, k := range [...]struct{ kind, name string }{
		{"enum", d.Enum},
		{"typedef", d.Typedef},
		{"struct", d.Struct},
		{"union", d.Union},
		{"funcptr", d.FuncPtr},
	} {
		if k.name != "" {
			if kind != "" {
				return "", ""
			}
			kind, name = k.kind, k.name
		}
	}
	return
}

func LoadFile(path string, profile *ctypes.Profile) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading declarations %s: %w", path, err)
	}
	return Parse(data, path, profile)
}

func Load(r io.Reader, profile *ctypes.Profile) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading declarations: %w", err)
	}
	return Parse(data, "<input>", profile)
}

// Parse builds the types declared in data. path is used in error messages.
//
// Pointer types are interned in the pointer cache of profile, and array
// types in the process-wide array cache, for as long as those caches live.
// A long-running caller that loads many files should pass a profile from
// ctypes.NewProfile, which gets its own pointer cache.
func Parse(data []byte, path string, profile *ctypes.Profile) (*Set, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := file.validate(path); err != nil {
		return nil, err
	}
	set := NewSet(profile)
	if err := set.build(file.Types, path); err != nil {
		return nil, err
	}
	Logger().Debug("declarations loaded", zap.String("path", path), zap.Int("types", len(set.order)))
	return set, nil
}

// validate checks the declarations for structural errors.
func (f *File) validate(path string) error {
	for i := range f.Types {
		d := &f.Types[i]
		kind, name := d.Kind()
		if kind == "" {
			return fmt.Errorf("%s: types[%d]: %w: need exactly one of enum, typedef, struct, union, funcptr", path, i, ctypes.ErrInvalidDeclaration)
		}
		var bad string
		switch kind {
		case "enum":
			if len(d.Members) > 0 && len(d.Values) > 0 {
				bad = "members and values are mutually exclusive"
			} else if d.Type != "" || len(d.Fields) > 0 || d.Returns != "" || len(d.Args) > 0 {
				bad = "enum takes only members or values"
			}
		case "typedef":
			if d.Type == "" {
				bad = "type is required"
			} else if len(d.Members)+len(d.Values)+len(d.Fields)+len(d.Args) > 0 || d.Returns != "" {
				bad = "typedef takes only type"
			}
		case "struct", "union":
			if d.Type != "" || len(d.Members)+len(d.Values)+len(d.Args) > 0 || d.Returns != "" {
				bad = kind + " takes only fields"
			}
		case "funcptr":
			if d.Type != "" || len(d.Members)+len(d.Values)+len(d.Fields) > 0 {
				bad = "funcptr takes only returns and args"
			}
		}
		if bad != "" {
			return fmt.Errorf("%s: types[%d] (%s %s): %w: %s", path, i, kind, name, ctypes.ErrInvalidDeclaration, bad)
		}
	}
	return nil
}
