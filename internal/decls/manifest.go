package decls

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"
)

// TypedefDecl binds Name to the type expression Type.
type TypedefDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// FieldDecl is one struct member in declaration order.
type FieldDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// StructDecl declares a named structure.
type StructDecl struct {
	Name   string      `toml:"name"`
	Fields []FieldDecl `toml:"fields"`
}

// Document is the decoded body of one manifest file.
type Document struct {
	Typedefs []TypedefDecl `toml:"typedef"`
	Structs  []StructDecl  `toml:"struct"`
}

// Manifest is one loaded manifest. ReadErr and DecodeErr are per-file; the
// builder reports them instead of aborting the whole load.
type Manifest struct {
	Path      string
	Content   []byte
	Doc       Document
	ReadErr   error
	DecodeErr error
}

// Failed reports whether the manifest could not be read or decoded.
func (m *Manifest) Failed() bool { return m.ReadErr != nil || m.DecodeErr != nil }

// Parse decodes content as a manifest named path.
func Parse(path string, content []byte) *Manifest {
	m := &Manifest{Path: path, Content: content}
	m.DecodeErr = decode(content, &m.Doc)
	return m
}

func decode(content []byte, doc *Document) error {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	meta, err := toml.Decode(string(content), doc)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for i, td := range doc.Typedefs {
		if td.Name == "" {
			return fmt.Errorf("typedef #%d: missing name", i+1)
		}
		if td.Type == "" {
			return fmt.Errorf("typedef %s: missing type", td.Name)
		}
	}
	for i, sd := range doc.Structs {
		if sd.Name == "" {
			return fmt.Errorf("struct #%d: missing name", i+1)
		}
		for j, fd := range sd.Fields {
			if fd.Name == "" {
				return fmt.Errorf("struct %s field #%d: missing name", sd.Name, j+1)
			}
			if fd.Type == "" {
				return fmt.Errorf("field %s.%s: missing type", sd.Name, fd.Name)
			}
		}
	}
	return nil
}

// LoadFiles reads and decodes paths concurrently with at most jobs workers
// (jobs <= 0 means unlimited). The result keeps the order of paths. The
// returned error is only non-nil when ctx is cancelled.
func LoadFiles(ctx context.Context, paths []string, jobs int) ([]*Manifest, error) {
	out := make([]*Manifest, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				out[i] = &Manifest{Path: path, ReadErr: err}
				return nil
			}
			out[i] = Parse(path, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
