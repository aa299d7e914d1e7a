//go:build cgo

package kotlinsrc

import (
	"context"
	"fmt"
	"go/token"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"

	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/models"
)

// Reader wraps a tree-sitter parser for Kotlin. A Reader is not safe for
// concurrent use, give each worker its own.
type Reader struct {
	parser *sitter.Parser
}

// NewReader creates a new Kotlin reader.
func NewReader() *Reader {
	p := sitter.NewParser()
	p.SetLanguage(kotlin.GetLanguage())
	return &Reader{parser: p}
}

// IsAvailable returns whether Kotlin sources can be read in this build.
func IsAvailable() bool {
	return true
}

// ReadFile reads and parses a Kotlin file from disk.
func (r *Reader) ReadFile(ctx context.Context, path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.ReadSource(ctx, path, source)
}

// ReadSource parses Kotlin source bytes.
func (r *Reader) ReadSource(ctx context.Context, path string, source []byte) (*File, error) {
	tree, err := r.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{
		file:   &File{Path: path, Package: fqname.Root, HasErrors: root.HasError()},
		source: source,
	}
	w.readHeader(root)
	w.scope = newScope(w.file.Package, w.file.Imports)
	w.visit(root, models.Container{Kind: models.ContainerPackage, FqName: w.file.Package})
	return w.file, nil
}

type walker struct {
	file   *File
	source []byte
	scope  *scope
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.source)
}

func (w *walker) position(n *sitter.Node) token.Position {
	p := n.StartPoint()
	return token.Position{
		Filename: w.file.Path,
		Offset:   int(n.StartByte()),
		Line:     int(p.Row) + 1,
		Column:   int(p.Column) + 1,
	}
}

// readHeader collects the package and imports, which must be known before
// any name in the file can be resolved.
func (w *walker) readHeader(root *sitter.Node) {
	for _, n := range children(root) {
		switch n.Type() {
		case "package_header":
			if id := firstChildOfType(n, "identifier"); id != nil {
				w.file.Package = fqname.New(compact(w.text(id)))
			}
		case "import_list":
			for _, imp := range children(n) {
				if imp.Type() == "import_header" {
					w.addImport(w.text(imp))
				}
			}
		case "import_header":
			w.addImport(w.text(n))
		}
	}
}

func (w *walker) addImport(text string) {
	if imp, ok := parseImport(text); ok {
		w.file.Imports = append(w.file.Imports, imp)
	}
}

// parseImport reads "import a.b.C", "import a.b.C as D" and "import a.b.*".
func parseImport(text string) (Import, bool) {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "import"))
	text = strings.TrimSuffix(text, ";")
	var imp Import
	if path, alias, ok := strings.Cut(text, " as "); ok {
		text = path
		imp.Alias = strings.TrimSpace(alias)
	}
	text = compact(text)
	if strings.HasSuffix(text, ".*") {
		imp.Star = true
		text = strings.TrimSuffix(text, ".*")
	}
	if text == "" {
		return Import{}, false
	}
	imp.FqName = fqname.New(text)
	return imp, true
}

func (w *walker) visit(n *sitter.Node, container models.Container) {
	switch n.Type() {
	case "line_comment", "multiline_comment", "comment":
		w.file.Comments = append(w.file.Comments, Comment{
			Line: int(n.StartPoint().Row) + 1,
			Text: w.text(n),
		})
		return
	case "function_declaration":
		if c := w.readFunction(n, container); c != nil {
			w.file.Callables = append(w.file.Callables, c)
		}
		// local functions are not visible to overload resolution outside the body
		w.visitComments(n)
		return
	case "class_declaration", "object_declaration":
		name := firstChildOfType(n, "type_identifier")
		if name == nil {
			break
		}
		fq := container.FqName.Child(w.text(name))
		mods := firstChildOfType(n, "modifiers")
		if n.Type() == "class_declaration" && isAnnotationClass(w, n, mods) {
			w.file.AnnotationClasses = append(w.file.AnnotationClasses, &models.AnnotationClass{
				FqName:      fq,
				Annotations: w.readAnnotations(mods, w.scope),
				Position:    w.position(n),
			})
		}
		inner := models.Container{Kind: models.ContainerClass, FqName: fq}
		for _, child := range children(n) {
			w.visit(child, inner)
		}
		return
	case "companion_object":
		name := firstChildOfType(n, "type_identifier")
		fq := container.FqName.Child("Companion")
		if name != nil {
			fq = container.FqName.Child(w.text(name))
		}
		inner := models.Container{Kind: models.ContainerClass, FqName: fq}
		for _, child := range children(n) {
			w.visit(child, inner)
		}
		return
	}
	for _, child := range children(n) {
		w.visit(child, container)
	}
}

// visitComments collects comments nested in a declaration without reading
// its local declarations.
func (w *walker) visitComments(n *sitter.Node) {
	for _, c := range findNodes(n, "line_comment", "multiline_comment", "comment") {
		w.file.Comments = append(w.file.Comments, Comment{
			Line: int(c.StartPoint().Row) + 1,
			Text: w.text(c),
		})
	}
}

func isAnnotationClass(w *walker, decl, mods *sitter.Node) bool {
	if mods != nil {
		for _, m := range children(mods) {
			if m.Type() == "class_modifier" && w.text(m) == "annotation" {
				return true
			}
		}
	}
	// older grammars keep the keyword as an anonymous token
	for _, c := range children(decl) {
		if !c.IsNamed() && c.Type() == "annotation" {
			return true
		}
	}
	return false
}

func (w *walker) readFunction(n *sitter.Node, container models.Container) *models.Callable {
	c := &models.Callable{Container: container, Position: w.position(n)}

	var (
		mods, typeParams, params, constraints *sitter.Node
		receiver                              *sitter.Node
	)
	for _, child := range children(n) {
		switch child.Type() {
		case "modifiers":
			mods = child
		case "type_parameters":
			typeParams = child
		case "simple_identifier":
			if c.Name == "" {
				c.Name = w.text(child)
			}
		case "user_type", "nullable_type", "parenthesized_type":
			// a type before the name is the receiver, after it the return type
			if c.Name == "" {
				receiver = child
			}
		case "function_value_parameters":
			params = child
		case "type_constraints":
			constraints = child
		}
	}
	if c.Name == "" {
		return nil
	}

	c.TypeParameters = w.readTypeParameters(typeParams)
	sc := w.scope.withTypeParams(c.TypeParameters)
	w.readBounds(typeParams, constraints, c.TypeParameters, sc)

	c.Annotations = w.readAnnotations(mods, sc)
	if receiver != nil {
		ref := w.readType(receiver, sc)
		c.ExtensionReceiver = &ref
	}
	c.ValueParameters = w.readParameters(params, sc)
	return c
}

// readTypeParameters declares the type parameters without their bounds, so
// that bounds may refer to any parameter of the same list.
func (w *walker) readTypeParameters(n *sitter.Node) []*models.Classifier {
	if n == nil {
		return nil
	}
	var out []*models.Classifier
	for _, tp := range children(n) {
		if tp.Type() != "type_parameter" {
			continue
		}
		name := firstChildOfType(tp, "type_identifier")
		if name == nil {
			continue
		}
		out = append(out, &models.Classifier{Kind: models.ClassifierTypeParameter, Name: w.text(name)})
	}
	return out
}

func (w *walker) readBounds(typeParams, constraints *sitter.Node, declared []*models.Classifier, sc *scope) {
	byName := make(map[string]*models.Classifier, len(declared))
	for _, tp := range declared {
		byName[tp.Name] = tp
	}
	addBound := func(n *sitter.Node) {
		name := firstChildOfType(n, "type_identifier")
		if name == nil {
			return
		}
		tp, ok := byName[w.text(name)]
		if !ok {
			return
		}
		if bound := typeAfterColon(n); bound != nil {
			tp.UpperBounds = append(tp.UpperBounds, w.readType(bound, sc))
		}
	}
	if typeParams != nil {
		for _, n := range children(typeParams) {
			if n.Type() == "type_parameter" {
				addBound(n)
			}
		}
	}
	if constraints != nil {
		for _, n := range children(constraints) {
			if n.Type() == "type_constraint" {
				addBound(n)
			}
		}
	}
}

func typeAfterColon(n *sitter.Node) *sitter.Node {
	seen := false
	for _, c := range children(n) {
		if !c.IsNamed() && c.Type() == ":" {
			seen = true
			continue
		}
		if seen && c.IsNamed() {
			return c
		}
	}
	return nil
}

func (w *walker) readParameters(n *sitter.Node, sc *scope) []models.ValueParameter {
	if n == nil {
		return nil
	}
	var (
		out     []models.ValueParameter
		pending *sitter.Node
	)
	for _, child := range children(n) {
		switch child.Type() {
		case "parameter_modifiers":
			pending = child
		case "parameter":
			p := models.ValueParameter{Position: w.position(child)}
			if name := firstChildOfType(child, "simple_identifier"); name != nil {
				p.Name = w.text(name)
			}
			if t := typeAfterColon(child); t != nil {
				p.Type = w.readType(t, sc)
			}
			p.Annotations = w.readAnnotations(pending, sc)
			pending = nil
			out = append(out, p)
		}
	}
	return out
}

func (w *walker) readType(n *sitter.Node, sc *scope) models.TypeRef {
	ref := models.TypeRef{Text: compact(w.text(n))}
	for n != nil {
		switch n.Type() {
		case "nullable_type":
			ref.Nullable = true
			n = firstNamedChild(n)
			continue
		case "parenthesized_type", "type_modifiers":
			n = firstNamedChild(n)
			continue
		case "user_type":
			ref.Declaration = sc.resolveClassifier(userTypeName(w, n))
		}
		break
	}
	return ref
}

// userTypeName drops type arguments: Map<K, V> reads as Map.
func userTypeName(w *walker, n *sitter.Node) string {
	var parts []string
	for _, c := range children(n) {
		if c.Type() == "type_identifier" {
			parts = append(parts, w.text(c))
		}
	}
	return strings.Join(parts, ".")
}

func (w *walker) readAnnotations(mods *sitter.Node, sc *scope) []models.Annotation {
	if mods == nil {
		return nil
	}
	var out []models.Annotation
	for _, a := range children(mods) {
		if a.Type() != "annotation" {
			continue
		}
		if ann, ok := w.readAnnotation(a, sc); ok {
			out = append(out, ann)
		}
	}
	return out
}

func (w *walker) readAnnotation(n *sitter.Node, sc *scope) (models.Annotation, bool) {
	if t := firstChildOfType(n, "user_type"); t != nil {
		return models.Annotation{FqName: sc.resolveFqName(userTypeName(w, t))}, true
	}
	inv := firstChildOfType(n, "constructor_invocation")
	if inv == nil {
		return models.Annotation{}, false
	}
	t := firstChildOfType(inv, "user_type")
	if t == nil {
		return models.Annotation{}, false
	}
	ann := models.Annotation{FqName: sc.resolveFqName(userTypeName(w, t))}
	if args := firstChildOfType(inv, "value_arguments"); args != nil {
		for _, arg := range children(args) {
			if arg.Type() == "value_argument" {
				ann.Arguments = append(ann.Arguments, w.readArgument(arg, sc))
			}
		}
	}
	return ann, true
}

func (w *walker) readArgument(n *sitter.Node, sc *scope) models.AnnotationArgument {
	var arg models.AnnotationArgument
	named := false
	for _, c := range children(n) {
		if !c.IsNamed() && c.Type() == "=" {
			named = true
		}
	}
	var value *sitter.Node
	for _, c := range children(n) {
		if !c.IsNamed() {
			continue
		}
		if named && arg.Name == "" && c.Type() == "simple_identifier" {
			arg.Name = w.text(c)
			continue
		}
		value = c
	}
	if value == nil {
		arg.Value = models.RawValue("")
		return arg
	}
	arg.Value = w.readValue(value, sc)
	return arg
}

func (w *walker) readValue(n *sitter.Node, sc *scope) any {
	text := w.text(n)
	switch n.Type() {
	case "string_literal":
		if len(findNodes(n, "interpolated_expression", "interpolated_identifier")) > 0 {
			return models.RawValue(text)
		}
		return models.StringValue(unquote(text))
	case "navigation_expression":
		path := compact(text)
		enum, entry, ok := cutLast(path, ".")
		if !ok {
			return models.RawValue(text)
		}
		return models.EnumValue{Enum: sc.resolveFqName(enum), Entry: entry}
	}
	return models.RawValue(text)
}

func unquote(s string) string {
	if strings.HasPrefix(s, `"""`) && strings.HasSuffix(s, `"""`) && len(s) >= 6 {
		return s[3 : len(s)-3]
	}
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// compact removes whitespace, so "a . b" and "a.b" read the same.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func children(n *sitter.Node) []*sitter.Node {
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func firstChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for _, c := range children(n) {
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	for _, c := range children(n) {
		if c.IsNamed() && c.Type() != "type_modifiers" {
			return c
		}
	}
	return nil
}

// findNodes finds all descendant nodes of the given types.
func findNodes(root *sitter.Node, types ...string) []*sitter.Node {
	var result []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		for _, t := range types {
			if n.Type() == t {
				result = append(result, n)
				break
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return result
}
