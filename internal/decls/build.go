package decls

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"quill/internal/arena"
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/trace"
	"quill/internal/types"
)

// Options configures a Builder.
type Options struct {
	Types    types.Options
	Reporter diag.Reporter
	Tracer   trace.Tracer
}

// Builder turns loaded manifests into a populated type table. Every store it
// owns is backed by one Arena; a Builder is not safe for concurrent use.
type Builder struct {
	Arena   *arena.Arena
	Files   *source.FileSet
	Strings *source.Interner
	Tokens  *token.Store
	Exprs   *ast.Exprs
	Types   *types.Table

	reporter diag.Reporter
	tracer   trace.Tracer
	errors   int
}

// NewBuilder allocates the token, expression and type stores in a. When
// opts.Types.ArrayLen is nil, array lengths written as integer literals are
// evaluated by the builder.
func NewBuilder(a *arena.Arena, fs *source.FileSet, opts Options) *Builder {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	b := &Builder{
		Arena:    a,
		Files:    fs,
		Strings:  source.NewInterner(),
		Tokens:   token.NewStore(a),
		Exprs:    ast.NewExprs(a, 0),
		reporter: opts.Reporter,
		tracer:   tracer,
	}
	topts := opts.Types
	if topts.ArrayLen == nil {
		topts.ArrayLen = arrayLen(b.Exprs, b.Strings)
	}
	if topts.Tracer == nil {
		topts.Tracer = tracer
	}
	b.Types = types.NewTable(a, topts)
	return b
}

// Result summarises one Build.
type Result struct {
	Files    int
	Typedefs int
	Declared int
	Defined  int
	Errors   int
}

type structLoc struct {
	name   source.Span
	fields []fieldLoc
}

type fieldLoc struct {
	name, typ source.Span
}

type typedefLoc struct {
	name, typ source.Span
}

type loadedFile struct {
	file     *source.File
	doc      *Document
	structs  []structLoc
	typedefs []typedefLoc
}

type pending struct {
	ty     types.Type
	name   string
	at     source.Span
	file   *loadedFile
	index  int
	fields []types.FieldDecl
	deps   []types.Type
	failed bool
	done   bool
}

// Build registers every manifest: structures are forward-declared first,
// typedefs are bound in file order, then structures are defined once every
// structure they embed by value is complete.
func (b *Builder) Build(manifests []*Manifest) Result {
	span := trace.Begin(b.tracer, trace.ScopePhase, "decls.build", 0)
	b.errors = 0

	files := b.addFiles(manifests)
	pend := b.declare(files)
	typedefs := b.bindTypedefs(files)
	for _, p := range pend {
		b.parseFields(p)
	}
	defined := b.defineAll(pend)

	res := Result{
		Files:    len(files),
		Typedefs: typedefs,
		Declared: len(pend),
		Defined:  defined,
		Errors:   b.errors,
	}
	span.End(fmt.Sprintf("files=%d structs=%d/%d errors=%d", res.Files, res.Defined, res.Declared, res.Errors))
	return res
}

func (b *Builder) report(code diag.Code, sp source.Span, format string, args ...any) *diag.ReportBuilder {
	b.errors++
	return diag.ReportError(b.reporter, code, sp, fmt.Sprintf(format, args...))
}

func (b *Builder) addFiles(manifests []*Manifest) []*loadedFile {
	out := make([]*loadedFile, 0, len(manifests))
	for _, m := range manifests {
		if m.ReadErr != nil {
			b.report(diag.IOLoadFileError, source.Span{}, "%s: %v", m.Path, m.ReadErr).Emit()
			continue
		}
		id := b.Files.AddBytes(m.Path, m.Content)
		file := b.Files.Get(id)
		if m.DecodeErr != nil {
			sp := source.Span{File: id}
			var perr toml.ParseError
			if errors.As(m.DecodeErr, &perr) && perr.Position.Line > 0 {
				sp = lineSpan(file, perr.Position.Line)
			}
			b.report(diag.IODecodeError, sp, "%s: %v", m.Path, m.DecodeErr).Emit()
			continue
		}
		out = append(out, locateAll(file, &m.Doc))
	}
	return out
}

func locateAll(file *source.File, doc *Document) *loadedFile {
	lf := &loadedFile{file: file, doc: doc}
	l := newLocator(file)
	for _, sd := range doc.Structs {
		loc := structLoc{name: l.find("name", sd.Name)}
		for _, fd := range sd.Fields {
			loc.fields = append(loc.fields, fieldLoc{
				name: l.find("name", fd.Name),
				typ:  l.find("type", fd.Type),
			})
		}
		lf.structs = append(lf.structs, loc)
	}
	l = newLocator(file)
	for _, td := range doc.Typedefs {
		name := l.find("name", td.Name)
		lf.typedefs = append(lf.typedefs, typedefLoc{name: name, typ: l.find("type", td.Type)})
	}
	return lf
}

func (b *Builder) declare(files []*loadedFile) []*pending {
	var out []*pending
	seen := make(map[string]source.Span)
	for _, lf := range files {
		for i, sd := range lf.doc.Structs {
			at := lf.structs[i].name
			key := source.NormalizeIdent(sd.Name)
			if prev, dup := seen[key]; dup {
				b.report(diag.SemaStructRedefinition, at, "struct %s is declared more than once", sd.Name).
					WithNote(prev, "previous declaration is here").Emit()
				continue
			}
			tok := b.Tokens.Add(token.Token{Kind: token.Ident, Span: at, Text: sd.Name})
			ty, err := b.Types.ForwardDeclare(sd.Name, tok)
			if err != nil {
				b.report(codeFor(err), at, "struct %s: %v", sd.Name, err).Emit()
				continue
			}
			seen[key] = at
			out = append(out, &pending{ty: ty, name: key, at: at, file: lf, index: i})
		}
	}
	return out
}

func (b *Builder) bindTypedefs(files []*loadedFile) int {
	n := 0
	for _, lf := range files {
		for i, td := range lf.doc.Typedefs {
			loc := lf.typedefs[i]
			if _, isStruct := b.Types.StructByName(td.Name); isStruct {
				b.report(diag.SemaReservedName, loc.name, "typedef %s collides with a struct of the same name", td.Name).Emit()
				continue
			}
			ty, err := b.parseValue(td.Type, lf.file.ID, loc.typ)
			if err != nil {
				b.Report(err)
				continue
			}
			if err := b.Types.DefineAlias(td.Name, ty); err != nil {
				b.report(codeFor(err), loc.name, "typedef %s: %v", td.Name, err).Emit()
				continue
			}
			n++
		}
	}
	return n
}

// Report turns an error from ParseType or the table into a diagnostic.
func (b *Builder) Report(err error) {
	var perr *Error
	if errors.As(err, &perr) {
		b.report(perr.Code, perr.Span, "%s", perr.Msg).Emit()
		return
	}
	b.report(diag.SemaError, source.Span{}, "%v", err).Emit()
}

// parseValue parses a type expression located at the literal span at. When
// the literal holds escapes its text does not line up with src, so parse
// errors cover the whole literal.
func (b *Builder) parseValue(src string, file source.FileID, at source.Span) (types.Type, error) {
	ty, err := b.ParseType(src, file, at.Start)
	var perr *Error
	if err != nil && int(at.End-at.Start) != len(src) && errors.As(err, &perr) {
		perr.Span = at
	}
	return ty, err
}

func (b *Builder) parseFields(p *pending) {
	sd := p.file.doc.Structs[p.index]
	loc := p.file.structs[p.index]
	p.fields = make([]types.FieldDecl, 0, len(sd.Fields))
	for i, fd := range sd.Fields {
		ty, err := b.parseValue(fd.Type, p.file.file.ID, loc.fields[i].typ)
		if err != nil {
			b.Report(err)
			p.failed = true
			continue
		}
		tok := b.Tokens.Add(token.Token{Kind: token.Ident, Span: loc.fields[i].name, Text: fd.Name})
		p.fields = append(p.fields, types.FieldDecl{Name: fd.Name, Type: ty, Token: tok})
		if types.IsStruct(ty) {
			p.deps = append(p.deps, ty)
		}
	}
}

// defineAll runs the worklist until no pending structure can make progress.
func (b *Builder) defineAll(pend []*pending) int {
	byID := make(map[types.StructID]*pending, len(pend))
	for _, p := range pend {
		byID[p.ty.Struct] = p
	}
	defined := 0
	for progress := true; progress; {
		progress = false
		for _, p := range pend {
			if p.done || p.failed || !b.ready(p) {
				continue
			}
			p.done = true
			progress = true
			if err := b.Types.Define(p.ty, p.fields); err != nil {
				p.failed = true
				b.report(codeFor(err), b.errorSpan(err, p.at), "struct %s: %v", p.name, err).Emit()
				continue
			}
			defined++
		}
	}

	for _, p := range pend {
		if p.done || p.failed {
			continue
		}
		if culprit := b.failedDep(p, byID, map[types.StructID]bool{}); culprit != nil {
			b.report(diag.SemaIncompleteStruct, p.at, "struct %s embeds %s, which could not be defined", p.name, culprit.name).
				WithNote(culprit.at, culprit.name+" is declared here").Emit()
			continue
		}
		b.report(diag.SemaRecursiveLayout, p.at, "struct %s contains itself by value", p.name).Emit()
	}
	return defined
}

func (b *Builder) ready(p *pending) bool {
	for _, dep := range p.deps {
		s, err := b.Types.Struct(dep)
		if err != nil || s.Incomplete {
			return false
		}
	}
	return true
}

// failedDep finds a structure p transitively embeds that failed outright.
func (b *Builder) failedDep(p *pending, byID map[types.StructID]*pending, seen map[types.StructID]bool) *pending {
	seen[p.ty.Struct] = true
	for _, dep := range p.deps {
		q, ok := byID[dep.Struct]
		if !ok {
			continue
		}
		if q.failed {
			return q
		}
		if seen[q.ty.Struct] {
			continue
		}
		if culprit := b.failedDep(q, byID, seen); culprit != nil {
			return culprit
		}
	}
	return nil
}

func (b *Builder) errorSpan(err error, fallback source.Span) source.Span {
	var terr *types.Error
	if errors.As(err, &terr) && terr.Type.Token.IsValid() {
		return b.Tokens.Span(terr.Type.Token)
	}
	return fallback
}

func codeFor(err error) diag.Code {
	switch {
	case errors.Is(err, types.ErrDuplicateField):
		return diag.SemaDuplicateField
	case errors.Is(err, types.ErrIncompleteStruct):
		return diag.SemaIncompleteStruct
	case errors.Is(err, types.ErrStructRedefined):
		return diag.SemaStructRedefinition
	case errors.Is(err, types.ErrAliasRedefined):
		return diag.SemaAliasRedefinition
	case errors.Is(err, types.ErrReservedName):
		return diag.SemaReservedName
	case errors.Is(err, types.ErrUnsupported):
		return diag.SemaUnsupportedType
	case errors.Is(err, types.ErrUnknownType):
		return diag.SemaUnknownType
	default:
		return diag.SemaError
	}
}
