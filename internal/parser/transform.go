package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/symbols"
)

// Options tune how strictly documentation is compared to signatures.
type Options struct {
	StrictTypes        bool // compare type names case-sensitively
	StrictLabels       bool // labels must match exactly, no preposition folding
	ReportUndocumented bool // warn about symbols without a block
}

// Transform converts a well-formed function block into a FunctionDoc and
// validates it against fn. It always returns a document; every finding is
// reported as a diagnostic and none of them stops the pass.
func Transform(node *DocNode, fn symbols.Function, opts Options) (*FunctionDoc, []diag.Diagnostic) {
	doc, diags := extract(node)
	diags = append(diags, validate(doc, fn, opts)...)
	return doc, diags
}

func extract(node *DocNode) (*FunctionDoc, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	doc := &FunctionDoc{
		FunctionName: node.Tag,
		Offset:       node.Start,
		ParamsOffset: node.Start,
		ReturnOffset: node.Start,
	}

	first := func(key string) (Attribute, bool) {
		all := node.AttrAll(key)
		for _, dup := range all[min(1, len(all)):] {
			diags = append(diags, diag.Warningf(diag.DuplicateAttribute, dup.Offset, "@%s is already set for %s; later value ignored", key, node.Tag))
		}
		if len(all) == 0 {
			return Attribute{}, false
		}
		return all[0], true
	}

	if a, ok := first("summary"); ok {
		doc.Summary = a.Value
	} else {
		diags = append(diags, diag.Warningf(diag.MissingSummary, node.Start, "%s has no @summary", node.Tag))
	}

	if a, ok := first("description"); ok {
		doc.Description = a.Value
	}

	if a, ok := first("return"); ok {
		doc.ReturnOffset = a.Offset
		typ, desc, _ := cutWord(a.Value)
		if typ == "" {
			diags = append(diags, diag.Errorf(diag.MalformedAttribute, a.Offset, "@return in %s has no type", node.Tag))
		}
		doc.ReturnType = typ
		doc.ReturnDescription = desc
	}

	lists := node.ChildrenNamed("params", List)
	for _, dup := range lists[min(1, len(lists)):] {
		diags = append(diags, diag.Warningf(diag.DuplicateAttribute, dup.Start, "@[params is already declared for %s; later list ignored", node.Tag))
	}
	if len(lists) > 0 {
		doc.ParamsOffset = lists[0].Start
		for _, a := range lists[0].Attributes {
			p, ok := paramDoc(a)
			if !ok {
				diags = append(diags, diag.Errorf(diag.MalformedAttribute, a.Offset, "parameter %q in %s needs %s", a.Key, node.Tag, paramForm(a)))
				continue
			}
			doc.Params = append(doc.Params, p)
		}
	}

	return doc, diags
}

// paramDoc reads `@name Type desc` or `@^label name Type desc`.
func paramDoc(a Attribute) (ParamDoc, bool) {
	p := ParamDoc{Offset: a.Offset}
	rest := a.Value
	if a.Caret {
		p.ExternalLabel = a.Key
		p.InternalName, rest, _ = cutWord(rest)
	} else {
		p.InternalName = a.Key
	}
	p.Type, p.Description, _ = cutWord(rest)
	return p, p.InternalName != "" && p.Type != ""
}

func paramForm(a Attribute) string {
	if a.Caret {
		return "the form @^label name Type"
	}
	return "the form @name Type"
}

func validate(doc *FunctionDoc, fn symbols.Function, opts Options) []diag.Diagnostic {
	var diags []diag.Diagnostic

	if len(doc.Params) != len(fn.Params) {
		diags = append(diags, diag.Errorf(diag.ParamCountMismatch, doc.ParamsOffset,
			"%s documents %d parameters but is declared with %d", fn.Name, len(doc.Params), len(fn.Params)))
	}

	for i := range min(len(doc.Params), len(fn.Params)) {
		p, decl := doc.Params[i], fn.Params[i]
		if !typesMatch(p.Type, decl.Type, opts.StrictTypes) {
			diags = append(diags, diag.Errorf(diag.ParamTypeMismatch, p.Offset,
				"parameter %s is documented as %s but declared as %s", decl.Name, p.Type, decl.Type))
		}
		diags = append(diags, checkLabels(p, decl, opts.StrictLabels)...)
	}

	if !typesMatch(doc.ReturnType, fn.Returns, opts.StrictTypes) {
		declared := fn.Returns
		if declared == "" {
			declared = "Void"
		}
		if doc.ReturnType == "" {
			diags = append(diags, diag.Errorf(diag.ReturnTypeMismatch, doc.ReturnOffset,
				"%s returns %s but has no @return", fn.Name, declared))
		} else {
			diags = append(diags, diag.Errorf(diag.ReturnTypeMismatch, doc.ReturnOffset,
				"%s is documented to return %s but is declared to return %s", fn.Name, doc.ReturnType, declared))
		}
	}

	return diags
}

func checkLabels(p ParamDoc, decl symbols.Param, strict bool) []diag.Diagnostic {
	var diags []diag.Diagnostic
	switch {
	case p.ExternalLabel == "" && decl.HasDistinctLabel():
		diags = append(diags, diag.Errorf(diag.ParamLabelMismatch, p.Offset,
			"parameter %s has call-site label %s; document it as @^%s %s %s", decl.Name, decl.Label, decl.Label, decl.Name, decl.Type))
	case p.ExternalLabel != "" && !decl.HasDistinctLabel():
		diags = append(diags, diag.Errorf(diag.ParamLabelMismatch, p.Offset,
			"parameter %s has no separate call-site label but is documented with @^%s", decl.Name, p.ExternalLabel))
	case p.ExternalLabel != "" && !labelsMatch(p.ExternalLabel, decl.Label, strict):
		diags = append(diags, diag.Errorf(diag.ParamLabelMismatch, p.Offset,
			"parameter %s is documented with label %s but declared with %s", decl.Name, p.ExternalLabel, decl.Label))
	}
	if norm.NFC.String(p.InternalName) != norm.NFC.String(decl.Name) {
		diags = append(diags, diag.Errorf(diag.ParamLabelMismatch, p.Offset,
			"parameter %s is documented as %s", decl.Name, p.InternalName))
	}
	return diags
}

var voidTypes = map[string]bool{"": true, "void": true, "()": true}

func normalizeType(t string, strict bool) string {
	t = norm.NFC.String(strings.Join(strings.Fields(t), ""))
	if voidTypes[strings.ToLower(t)] {
		return "void"
	}
	if !strict {
		t = strings.ToLower(t)
	}
	return t
}

func typesMatch(documented, declared string, strict bool) bool {
	return normalizeType(documented, strict) == normalizeType(declared, strict)
}

// Argument labels commonly lead with a preposition that reads well at the
// call site (`mul(firstNumber:withSecondNumber:)`) and is dropped in prose.
var labelPrepositions = []string{
	"with", "by", "to", "from", "for", "in", "on", "at", "of", "and", "into", "using", "as", "over",
}

func labelsMatch(documented, declared string, strict bool) bool {
	documented, declared = norm.NFC.String(documented), norm.NFC.String(declared)
	if strict {
		return documented == declared
	}
	if strings.EqualFold(documented, declared) {
		return true
	}
	for _, prep := range labelPrepositions {
		tail, ok := strings.CutPrefix(declared, prep)
		if !ok || tail == "" || !unicode.IsUpper(rune(tail[0])) {
			continue
		}
		if strings.EqualFold(tail, documented) {
			return true
		}
	}
	return false
}
