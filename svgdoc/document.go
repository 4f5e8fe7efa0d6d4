// Package svgdoc implements a small SVG element tree which keeps the document
// as close as possible to its source: attribute order, namespace prefixes,
// comments and white space are all preserved when the tree is written back.
package svgdoc

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Namespaces commonly found in SVG documents.
const (
	SVGNamespace   = "http://www.w3.org/2000/svg"
	XLinkNamespace = "http://www.w3.org/1999/xlink"
)

var (
	// ErrNotSVG is returned when the root element is not <svg>.
	ErrNotSVG = errors.New("root element is not <svg>")
	// ErrEmpty is returned when the document has no root element.
	ErrEmpty = errors.New("document has no root element")
)

// Node is a member of the document tree: *Element, CharData, Comment, ProcInst or Directive.
type Node interface {
	isNode()
}

// CharData is text content, including the white space between elements.
type CharData string

// Comment is an XML comment, without the delimiters.
type Comment string

// Directive is a <!...> directive such as DOCTYPE.
type Directive string

// ProcInst is a processing instruction other than the XML declaration.
type ProcInst struct {
	Target string
	Inst   string
}

func (CharData) isNode()  {}
func (Comment) isNode()   {}
func (Directive) isNode() {}
func (ProcInst) isNode()  {}
func (*Element) isNode()  {}

// Document is a parsed SVG file.
type Document struct {
	// Prolog holds the nodes preceding the root element, except the XML declaration.
	Prolog []Node
	Root   *Element
	// Epilog holds the nodes following the root element.
	Epilog []Node
}

// Parse reads an SVG document. Names are kept with their source prefixes,
// so that `xlink:href` is written back as `xlink:href`.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	doc := &Document{}
	var stack []*Element

	appendNode := func(n Node) {
		switch {
		case len(stack) > 0:
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
		case doc.Root == nil:
			doc.Prolog = append(doc.Prolog, n)
		default:
			doc.Epilog = append(doc.Epilog, n)
		}
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, fmt.Errorf("svg: multiple root elements")
				}
				doc.Root = el
			} else {
				appendNode(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("svg: unexpected closing tag </%s>", qualified(t.Name))
			}
			open := stack[len(stack)-1]
			if open.Name != t.Name {
				return nil, fmt.Errorf("svg: closing tag </%s> does not match <%s>",
					qualified(t.Name), qualified(open.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			appendNode(CharData(t))
		case xml.Comment:
			appendNode(Comment(t))
		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
			appendNode(ProcInst{Target: t.Target, Inst: string(t.Inst)})
		case xml.Directive:
			appendNode(Directive(t))
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("svg: unclosed element <%s>", qualified(stack[len(stack)-1].Name))
	}
	if doc.Root == nil {
		return nil, ErrEmpty
	}
	if doc.Root.Tag() != "svg" {
		return nil, ErrNotSVG
	}
	return doc, nil
}

// Encode writes the document, preceded by an XML declaration.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	for _, n := range d.Prolog {
		if err := writeNode(bw, n); err != nil {
			return err
		}
		if _, ok := n.(CharData); !ok {
			bw.WriteByte('\n')
		}
	}
	if err := writeNode(bw, d.Root); err != nil {
		return err
	}
	for _, n := range d.Epilog {
		if err := writeNode(bw, n); err != nil {
			return err
		}
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ElementByID returns the first element with the given id.
func (d *Document) ElementByID(id string) *Element {
	var found *Element
	d.Root.Walk(func(el, _ *Element) bool {
		if found != nil {
			return false
		}
		if v, ok := el.Lookup("id"); ok && v == id {
			found = el
			return false
		}
		return true
	})
	return found
}

func writeNode(w *bufio.Writer, n Node) error {
	switch t := n.(type) {
	case *Element:
		return writeElement(w, t)
	case CharData:
		_, err := textEscaper.WriteString(w, string(t))
		return err
	case Comment:
		if strings.Contains(string(t), "--") {
			return fmt.Errorf("svg: comment contains \"--\"")
		}
		w.WriteString("<!--")
		w.WriteString(string(t))
		w.WriteString("-->")
	case Directive:
		w.WriteString("<!")
		w.WriteString(string(t))
		w.WriteString(">")
	case ProcInst:
		w.WriteString("<?")
		w.WriteString(t.Target)
		if t.Inst != "" {
			w.WriteByte(' ')
			w.WriteString(t.Inst)
		}
		w.WriteString("?>")
	}
	return nil
}

func writeElement(w *bufio.Writer, el *Element) error {
	w.WriteByte('<')
	w.WriteString(qualified(el.Name))
	for _, a := range el.Attrs {
		w.WriteByte(' ')
		w.WriteString(qualified(a.Name))
		w.WriteString(`="`)
		if err := escapeAttr(w, a.Value); err != nil {
			return err
		}
		w.WriteByte('"')
	}
	if len(el.Children) == 0 {
		w.WriteString("/>")
		return nil
	}
	w.WriteByte('>')
	for _, c := range el.Children {
		if err := writeNode(w, c); err != nil {
			return err
		}
	}
	w.WriteString("</")
	w.WriteString(qualified(el.Name))
	w.WriteByte('>')
	return nil
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\t", "&#9;",
)

func escapeAttr(w io.Writer, s string) error {
	_, err := attrEscaper.WriteString(w, s)
	return err
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func splitName(name string) xml.Name {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return xml.Name{Space: name[:i], Local: name[i+1:]}
	}
	return xml.Name{Local: name}
}
