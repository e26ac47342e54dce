// Package walker traverses a parsed Python syntax tree for one file and
// produces the raise-site, handler-site, call-edge, import, and
// exception-parent record streams that the rest of the pipeline consumes.
package walker

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/fridayops/crossing/internal/model"
)

// Result holds every record stream produced for one file.
type Result struct {
	Raises       []model.RaiseSite
	Handlers     []model.HandlerSite
	Edges        []model.CallEdge
	Imports      []model.ImportRecord
	Parents      []model.ExceptionParent
	TopLevelDefs []string // module-level function and class names
}

// walker carries the mutable traversal state for a single file. Four
// stacks track enclosing function, class, try-scope, and control-flow
// context, mirroring the scope tracking used for Python symbol extraction
// elsewhere in the pack.
type walker struct {
	file           string
	content        []byte
	detectImplicit bool

	funcStack  []string
	classStack []string
	tryStack   []string
	ctrlStack  []string

	tryScopeSeq int
	storeBytes  map[uint]bool // subscript/target bytes in store/del context

	result Result
}

// WalkFile parses content as Python source and extracts its record streams.
// A parse failure (nil tree or nil root) is reported as an error so the
// caller can count it as a ParseError and skip the file.
func WalkFile(path string, content []byte, detectImplicit bool) (*Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(sitter.NewLanguage(python.Language()))

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: failed to parse", path)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%s: empty syntax tree", path)
	}

	w := &walker{
		file:           path,
		content:        content,
		detectImplicit: detectImplicit,
		storeBytes:     make(map[uint]bool),
	}
	w.collectStoreTargets(root)
	w.walk(root)
	return &w.result, nil
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(content)
}

func lineOf(n *sitter.Node, content []byte) int {
	if n == nil {
		return 0
	}
	return int(n.StartPosition().Row) + 1
}

func findChild(n *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// collectStoreTargets walks the tree once up front to record the byte
// offsets of subscript targets that appear on the left of an assignment,
// as a `for` target, or as a `del` target, so the implicit-raise pass can skip
// subscript stores per spec's load-context-only rule.
func (w *walker) collectStoreTargets(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "assignment", "augmented_assignment":
		if left := n.ChildByFieldName("left"); left != nil {
			w.markStoreTargets(left)
		}
	case "del_statement":
		for _, c := range namedChildren(n) {
			w.markStoreTargets(c)
		}
	case "for_statement":
		if left := n.ChildByFieldName("left"); left != nil {
			w.markStoreTargets(left)
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		w.collectStoreTargets(n.Child(i))
	}
}

func (w *walker) markStoreTargets(n *sitter.Node) {
	if n == nil {
		return
	}
	if n.Kind() == "subscript" {
		w.storeBytes[uint(n.StartByte())] = true
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		w.markStoreTargets(n.Child(i))
	}
}

func (w *walker) currentFunction() string {
	if len(w.funcStack) == 0 {
		return ""
	}
	return w.funcStack[len(w.funcStack)-1]
}

func (w *walker) currentClass() string {
	if len(w.classStack) == 0 {
		return ""
	}
	return w.classStack[len(w.classStack)-1]
}

func (w *walker) currentTryScope() string {
	if len(w.tryStack) == 0 {
		return ""
	}
	return w.tryStack[len(w.tryStack)-1]
}

func (w *walker) context() string {
	if len(w.ctrlStack) > 0 {
		return w.ctrlStack[len(w.ctrlStack)-1]
	}
	fn := w.currentFunction()
	if fn == "" {
		return "in <module>"
	}
	return "in " + fn
}

func headerText(n *sitter.Node, content []byte) string {
	text := nodeText(n, content)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// walk dispatches on node kind, pushing/popping the relevant stack for
// constructs that introduce new scope, then recurses into children.
func (w *walker) walk(n *sitter.Node) {
	if n == nil {
		return
	}

	switch n.Kind() {
	case "function_definition", "async_function_definition":
		w.walkFunction(n)
		return
	case "class_definition":
		w.walkClass(n)
		return
	case "try_statement":
		w.walkTry(n)
		return
	case "if_statement", "while_statement", "for_statement":
		w.ctrlStack = append(w.ctrlStack, headerText(n, w.content))
		for i := uint(0); i < n.ChildCount(); i++ {
			w.walk(n.Child(i))
		}
		w.ctrlStack = w.ctrlStack[:len(w.ctrlStack)-1]
		return
	case "elif_clause":
		w.ctrlStack = append(w.ctrlStack, headerText(n, w.content))
		for i := uint(0); i < n.ChildCount(); i++ {
			w.walk(n.Child(i))
		}
		w.ctrlStack = w.ctrlStack[:len(w.ctrlStack)-1]
		return
	case "raise_statement":
		w.walkRaise(n)
		// still recurse, in case the raised expression itself contains calls
		for i := uint(0); i < n.ChildCount(); i++ {
			w.walk(n.Child(i))
		}
		return
	case "call":
		w.walkCall(n)
	case "subscript":
		w.walkSubscript(n)
	case "import_statement":
		w.walkImport(n)
	case "import_from_statement":
		w.walkImportFrom(n)
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		w.walk(n.Child(i))
	}
}

func (w *walker) walkFunction(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(nameNode, w.content)
	if name == "" {
		name = "<lambda>"
	}

	if len(w.funcStack) == 0 && w.currentClass() == "" {
		w.result.TopLevelDefs = append(w.result.TopLevelDefs, name)
	}

	// funcStack holds the bare enclosing function name — spec.md §3/§6
	// require RaiseSite.Function to be the function itself (e.g.
	// "__getitem__"), not qualified by its enclosing class. The class is
	// tracked separately on classStack; call-graph node identity is
	// file + bare function name (see walkCall).
	w.funcStack = append(w.funcStack, name)
	body := n.ChildByFieldName("body")
	if body == nil {
		body = findChild(n, "block")
	}
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			w.walk(body.Child(i))
		}
	}
	w.funcStack = w.funcStack[:len(w.funcStack)-1]
}

func (w *walker) walkClass(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(nameNode, w.content)

	w.recordExceptionParent(n, name)
	if len(w.classStack) == 0 && len(w.funcStack) == 0 {
		w.result.TopLevelDefs = append(w.result.TopLevelDefs, name)
	}

	w.classStack = append(w.classStack, name)
	body := n.ChildByFieldName("body")
	if body == nil {
		body = findChild(n, "block")
	}
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			w.walk(body.Child(i))
		}
	}
	w.classStack = w.classStack[:len(w.classStack)-1]
}

// recordExceptionParent records child -> parent when the class's first
// positional base ends in Error/Exception/Warning, or is already a known
// exception class recorded earlier in this file.
func (w *walker) recordExceptionParent(n *sitter.Node, className string) {
	argList := findChild(n, "argument_list")
	if argList == nil {
		return
	}
	var firstBase string
	for i := uint(0); i < argList.ChildCount(); i++ {
		c := argList.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "attribute":
			firstBase = nodeText(c, w.content)
		}
		if firstBase != "" {
			break
		}
	}
	if firstBase == "" {
		return
	}
	parentShortName := firstBase
	if idx := strings.LastIndex(parentShortName, "."); idx >= 0 {
		parentShortName = parentShortName[idx+1:]
	}
	known := looksLikeExceptionName(firstBase) || w.isKnownExceptionParent(parentShortName)
	if known {
		w.result.Parents = append(w.result.Parents, model.ExceptionParent{
			Child:  className,
			Parent: firstBase,
		})
	}
}

func looksLikeExceptionName(name string) bool {
	short := name
	if idx := strings.LastIndex(short, "."); idx >= 0 {
		short = short[idx+1:]
	}
	return strings.HasSuffix(short, "Error") || strings.HasSuffix(short, "Exception") || strings.HasSuffix(short, "Warning")
}

func (w *walker) isKnownExceptionParent(name string) bool {
	for _, p := range w.result.Parents {
		if p.Child == name {
			return true
		}
	}
	return false
}

func (w *walker) walkTry(n *sitter.Node) {
	w.tryScopeSeq++
	scopeID := fmt.Sprintf("%s:%d", w.file, w.tryScopeSeq)

	body := findChild(n, "block")
	w.tryStack = append(w.tryStack, scopeID)
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			w.walk(body.Child(i))
		}
	}
	w.tryStack = w.tryStack[:len(w.tryStack)-1]

	// except/else/finally clauses are not part of the try scope.
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "except_clause", "except_group_clause":
			w.walkExcept(c, scopeID)
		case "else_clause", "finally_clause":
			w.walk(c)
		}
	}
}

func (w *walker) walkExcept(n *sitter.Node, tryScopeID string) {
	named := namedChildren(n)
	var body *sitter.Node
	var typeExpr, aliasExpr *sitter.Node

	var rest []*sitter.Node
	for _, c := range named {
		if c.Kind() == "block" {
			body = c
			continue
		}
		rest = append(rest, c)
	}
	switch len(rest) {
	case 0:
		// bare except:
	case 1:
		typeExpr = rest[0]
	default:
		typeExpr = rest[0]
		aliasExpr = rest[1]
	}
	_ = aliasExpr

	types := exceptionTypeNames(typeExpr, w.content)
	if len(types) == 0 {
		types = []string{"BaseException"}
	}

	bodySummary, reRaises, returnsValue, assignsDefault := summarizeHandlerBody(body, w.content)

	for _, exType := range types {
		directCount := countDirectRaises(findTryBody(n), w.content, exType)
		h := model.HandlerSite{
			File:                w.file,
			Line:                lineOf(n, w.content),
			ExceptionType:       exType,
			Function:            w.currentFunction(),
			Class:               w.currentClass(),
			Body:                bodySummary,
			Snippet:             headerText(n, w.content),
			ReRaises:            reRaises,
			ReturnsValue:        returnsValue,
			AssignsDefault:      assignsDefault,
			DirectRaisesInScope: directCount,
		}
		w.result.Handlers = append(w.result.Handlers, h)
	}

	_ = tryScopeID
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			w.walk(body.Child(i))
		}
	}
}

// findTryBody returns the sibling try-body block for an except_clause node,
// looked up via the parent try_statement's first "block" child.
func findTryBody(exceptNode *sitter.Node) *sitter.Node {
	parent := exceptNode.Parent()
	if parent == nil {
		return nil
	}
	return findChild(parent, "block")
}

func exceptionTypeNames(n *sitter.Node, content []byte) []string {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "tuple":
		var out []string
		for _, c := range namedChildren(n) {
			out = append(out, exceptionTypeNames(c, content)...)
		}
		return out
	case "identifier", "attribute":
		return []string{nodeText(n, content)}
	default:
		return []string{nodeText(n, content)}
	}
}

// summarizeHandlerBody scans an except body for the dominant behavior:
// bare raise wins as re_raises; a return with a value sets returns_value;
// an assignment sets assigns_default; otherwise falls back to pass/log/other.
func summarizeHandlerBody(body *sitter.Node, content []byte) (model.HandlerBody, bool, bool, bool) {
	if body == nil {
		return model.BodyOther, false, false, false
	}
	var reRaises, returnsValue, assignsDefault, hasPass, hasCall bool

	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "raise_statement":
			if len(namedChildren(n)) == 0 {
				reRaises = true
			}
		case "return_statement":
			if len(namedChildren(n)) > 0 {
				returnsValue = true
			}
		case "assignment":
			assignsDefault = true
		case "pass_statement":
			hasPass = true
		case "call":
			funcNode := n.ChildByFieldName("function")
			name := nodeText(funcNode, content)
			if strings.Contains(name, "log") || strings.Contains(name, "warn") {
				hasCall = true
			}
		// do not descend into nested function/class defs
		case "function_definition", "async_function_definition", "class_definition":
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			scan(n.Child(i))
		}
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		scan(body.Child(i))
	}

	switch {
	case reRaises:
		return model.BodyReRaise, true, returnsValue, assignsDefault
	case returnsValue:
		return model.BodyReturn, false, true, assignsDefault
	case assignsDefault:
		return model.BodyAssign, false, false, true
	case hasCall:
		return model.BodyLog, false, false, false
	case hasPass:
		return model.BodyPass, false, false, false
	default:
		return model.BodyOther, false, false, false
	}
}

// countDirectRaises counts explicit raises of exType lexically inside body,
// not descending into nested try statements that re-catch (any nested
// try_statement is skipped wholesale, conservatively).
func countDirectRaises(body *sitter.Node, content []byte, exType string) int {
	if body == nil {
		return 0
	}
	count := 0
	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "try_statement":
			return
		case "function_definition", "async_function_definition", "class_definition":
			return
		case "raise_statement":
			if name, _ := raisedExceptionName(n, content); name == exType {
				count++
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			scan(n.Child(i))
		}
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		scan(body.Child(i))
	}
	return count
}

func (w *walker) walkRaise(n *sitter.Node) {
	named := namedChildren(n)
	if len(named) == 0 {
		// bare `raise` re-raise; already covered by handler re_raises.
		return
	}

	name, msg := raisedExceptionName(n, w.content)
	if name == "" {
		return
	}

	w.result.Raises = append(w.result.Raises, model.RaiseSite{
		File:          w.file,
		Line:          lineOf(n, w.content),
		ExceptionType: name,
		Function:      w.currentFunction(),
		Class:         w.currentClass(),
		Snippet:       headerText(n, w.content),
		Context:       w.context(),
		Implicit:      false,
		TryScopeID:    w.currentTryScope(),
		Message:       msg,
	})
}

// raisedExceptionName extracts the exception type name and, if present, a
// plain string-literal first-argument message from a raise statement's
// expression.
func raisedExceptionName(n *sitter.Node, content []byte) (string, string) {
	named := namedChildren(n)
	if len(named) == 0 {
		return "", ""
	}
	expr := named[0]
	switch expr.Kind() {
	case "call":
		funcNode := expr.ChildByFieldName("function")
		name := lastDottedSegment(nodeText(funcNode, content))
		msg := firstStringArg(expr, content)
		return name, msg
	case "identifier", "attribute":
		return lastDottedSegment(nodeText(expr, content)), ""
	default:
		return "", ""
	}
}

func lastDottedSegment(s string) string {
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// firstStringArg returns the text of a call's first argument if it is a
// plain string literal, else "".
func firstStringArg(call *sitter.Node, content []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		args = findChild(call, "argument_list")
	}
	if args == nil {
		return ""
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		c := args.NamedChild(i)
		if c == nil {
			continue
		}
		if c.Kind() == "string" {
			text := nodeText(c, content)
			if q := strings.IndexAny(text, `"'`); q > 0 && strings.ContainsAny(text[:q], "fF") {
				return "" // formatted string, not a plain literal
			}
			return stringLiteralValue(c, content)
		}
		return ""
	}
	return ""
}

// stringLiteralValue strips the surrounding quotes/prefix of a Python
// string node's raw text, best-effort.
func stringLiteralValue(n *sitter.Node, content []byte) string {
	text := nodeText(n, content)
	text = strings.TrimFunc(text, func(r rune) bool {
		return r == 'r' || r == 'b' || r == 'f' || r == 'R' || r == 'B' || r == 'F'
	})
	text = strings.Trim(text, `"'`)
	return text
}

func (w *walker) walkCall(n *sitter.Node) {
	funcNode := n.ChildByFieldName("function")
	calleeText := nodeText(funcNode, w.content)
	if calleeText == "" {
		return
	}

	callee := calleeText
	if funcNode != nil && funcNode.Kind() == "attribute" {
		// dotted module calls (prefix bound by `import M` / `import M as A`)
		// keep their dotted text for import resolution; any other attribute
		// call is a method call and keeps only the rightmost identifier.
		moduleCall := false
		for _, imp := range w.result.Imports {
			if imp.Name == "" && strings.HasPrefix(calleeText, imp.Alias+".") {
				moduleCall = true
				break
			}
		}
		if !moduleCall {
			callee = lastDottedSegment(calleeText)
		}
	}

	callerName := w.currentFunction()
	if callerName == "" {
		callerName = w.currentClass()
	}
	if callerName == "" {
		callerName = "<module>"
	}
	// Node identity is file-qualified so it lines up with what
	// internal/resolver.Resolve produces for a rewritten cross-file
	// callee ("<file>:<function>"), letting internal/callgraph match
	// raise-site and handler-site functions by the same id.
	caller := w.file + ":" + callerName

	w.result.Edges = append(w.result.Edges, model.CallEdge{
		Caller: caller,
		Callee: callee,
		File:   w.file,
		Line:   lineOf(n, w.content),
	})

	if w.detectImplicit {
		w.detectImplicitCall(n, funcNode, calleeText)
	}
}

func (w *walker) detectImplicitCall(call, funcNode *sitter.Node, calleeText string) {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		args = findChild(call, "argument_list")
	}
	argCount := uint(0)
	if args != nil {
		argCount = args.NamedChildCount()
	}

	bare := lastDottedSegment(calleeText)
	isAttr := funcNode != nil && funcNode.Kind() == "attribute"

	switch {
	case !isAttr && bare == "int" && argCount >= 1:
		w.emitImplicit(call, "ValueError", "implicit int() conversion")
	case !isAttr && bare == "float" && argCount >= 1:
		w.emitImplicit(call, "ValueError", "implicit float() conversion")
	case !isAttr && bare == "next" && argCount == 1:
		w.emitImplicit(call, "StopIteration", "implicit next() without default")
	case !isAttr && bare == "getattr" && argCount == 2:
		w.emitImplicit(call, "AttributeError", "implicit getattr() without default")
	case isAttr && bare == "index":
		w.emitImplicit(call, "ValueError", "implicit .index() lookup")
	}
}

func (w *walker) emitImplicit(n *sitter.Node, exType, construct string) {
	w.result.Raises = append(w.result.Raises, model.RaiseSite{
		File:          w.file,
		Line:          lineOf(n, w.content),
		ExceptionType: exType,
		Function:      w.currentFunction(),
		Class:         w.currentClass(),
		Snippet:       headerText(n, w.content),
		Context:       construct,
		Implicit:      true,
		TryScopeID:    w.currentTryScope(),
	})
}

func (w *walker) walkSubscript(n *sitter.Node) {
	if !w.detectImplicit {
		return
	}
	if w.storeBytes[uint(n.StartByte())] {
		return
	}
	w.emitImplicit(n, "KeyError", "implicit subscript")
	w.emitImplicit(n, "IndexError", "implicit subscript")
}

func (w *walker) walkImport(n *sitter.Node) {
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "dotted_name", "identifier":
			mod := nodeText(c, w.content)
			w.result.Imports = append(w.result.Imports, model.ImportRecord{Module: mod, Name: "", Alias: mod})
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			mod := nodeText(nameNode, w.content)
			alias := nodeText(aliasNode, w.content)
			if alias == "" {
				alias = mod
			}
			w.result.Imports = append(w.result.Imports, model.ImportRecord{Module: mod, Name: "", Alias: alias})
		}
	}
}

func (w *walker) walkImportFrom(n *sitter.Node) {
	moduleNode := n.ChildByFieldName("module_name")
	module := nodeText(moduleNode, w.content)

	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "dotted_name", "identifier":
			name := nodeText(c, w.content)
			if name == module {
				continue
			}
			w.result.Imports = append(w.result.Imports, model.ImportRecord{Module: module, Name: name, Alias: name})
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			name := nodeText(nameNode, w.content)
			alias := nodeText(aliasNode, w.content)
			if alias == "" {
				alias = name
			}
			w.result.Imports = append(w.result.Imports, model.ImportRecord{Module: module, Name: name, Alias: alias})
		case "wildcard_import":
			w.result.Imports = append(w.result.Imports, model.ImportRecord{Module: module, Name: "*", Alias: "*"})
		}
	}
}
