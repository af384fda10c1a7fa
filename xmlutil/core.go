// Converts between nested string-keyed maps and XML documents.
package xmlutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// func MapToXML {{{

// MapToXML renders the map as an XML document under the named root
// element.
//
// The mapping -
//
//	nested map          nested element
//	[]any               the element repeated, once per item
//	key starting "@"    attribute on the element
//	key "#text"         text content of the element
//	anything else       text content via %v
//
// Keys and attributes come out sorted, so the same map always renders
// to the same bytes. Nil values render as empty elements, empty slices
// render nothing at all.
//
// Element and attribute names have to be valid XML names, and lists
// can not nest directly inside lists, there is no element to carry the
// inner one.
func MapToXML(root string, data map[string]any) ([]byte, error) {
	if !validName(root) {
		return nil, fmt.Errorf("Invalid element name: %q", root)
	}

	var buf bytes.Buffer

	if err := writeElement(&buf, root, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
} // }}}

// func XMLToMap {{{

// XMLToMap parses an XML document back into a map, returning the root
// element's name alongside it.
//
// Attributes come back under "@" keys, repeated sibling elements fold
// into a []any, an element holding only text becomes a plain string,
// and one holding both text and children keeps the text under "#text".
// Whitespace-only text is dropped. A root with nothing but text wraps
// as {"#text": text}.
//
// Everything scalar comes back as a string. XML has no types, so a
// document produced from {"n": 42} parses back as {"n": "42"}.
func XMLToMap(doc []byte) (string, map[string]any, error) {
	d := xml.NewDecoder(bytes.NewReader(doc))

	// Skip past the prolog to the root element.
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return "", nil, fmt.Errorf("No root element")
		}

		if err != nil {
			return "", nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		val, err := readElement(d, start)
		if err != nil {
			return "", nil, err
		}

		switch v := val.(type) {
		case map[string]any:
			return start.Name.Local, v, nil
		case string:
			m := map[string]any{}
			if v != "" {
				m["#text"] = v
			}

			return start.Name.Local, m, nil
		}

		// readElement only returns the two shapes above.
		return "", nil, fmt.Errorf("Unexpected root value %T", val)
	}
} // }}}

// func writeElement {{{

func writeElement(buf *bytes.Buffer, name string, value any) error {
	if !validName(name) {
		return fmt.Errorf("Invalid element name: %q", name)
	}

	switch v := value.(type) {
	case nil:
		fmt.Fprintf(buf, "<%s></%s>", name, name)
		return nil
	case map[string]any:
		return writeMap(buf, name, v)
	case []any:
		for _, item := range v {
			if isList(item) {
				return fmt.Errorf("List under %q nests a list", name)
			}

			if err := writeElement(buf, name, item); err != nil {
				return err
			}
		}

		return nil
	case []byte:
		return writeText(buf, name, string(v))
	}

	if isList(value) || isMapMisc(value) {
		return fmt.Errorf("Unsupported value %T under %q", value, name)
	}

	return writeText(buf, name, fmt.Sprint(value))
} // }}}

// func writeMap {{{

func writeMap(buf *bytes.Buffer, name string, m map[string]any) error {
	attrs := make([]string, 0, len(m))
	children := make([]string, 0, len(m))
	text := ""

	for k, v := range m {
		switch {
		case strings.HasPrefix(k, "@"):
			attrs = append(attrs, k)
		case k == "#text":
			text = fmt.Sprint(v)
		default:
			children = append(children, k)
		}
	}

	sort.Strings(attrs)
	sort.Strings(children)

	buf.WriteByte('<')
	buf.WriteString(name)

	for _, k := range attrs {
		if !validName(k[1:]) {
			return fmt.Errorf("Invalid attribute name: %q", k)
		}

		fmt.Fprintf(buf, ` %s="`, k[1:])

		if err := escape(buf, fmt.Sprint(m[k])); err != nil {
			return err
		}

		buf.WriteByte('"')
	}

	buf.WriteByte('>')

	if text != "" {
		if err := escape(buf, text); err != nil {
			return err
		}
	}

	for _, k := range children {
		if err := writeElement(buf, k, m[k]); err != nil {
			return err
		}
	}

	fmt.Fprintf(buf, "</%s>", name)

	return nil
} // }}}

// func writeText {{{

func writeText(buf *bytes.Buffer, name, text string) error {
	buf.WriteByte('<')
	buf.WriteString(name)
	buf.WriteByte('>')

	if err := escape(buf, text); err != nil {
		return err
	}

	fmt.Fprintf(buf, "</%s>", name)

	return nil
} // }}}

// func readElement {{{

// Reads everything up to the element's closing tag.
//
// Returns a string for a childless, attributeless element, a
// map[string]any otherwise.
func readElement(d *xml.Decoder, start xml.StartElement) (any, error) {
	m := map[string]any{}

	for _, a := range start.Attr {
		m["@"+a.Name.Local] = a.Value
	}

	var text strings.Builder

	for {
		tok, err := d.Token()
		if err != nil {
			// The decoder catches a missing close tag itself, io.EOF
			// here means truncated input either way.
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := readElement(d, t)
			if err != nil {
				return nil, err
			}

			addChild(m, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			trimmed := strings.TrimSpace(text.String())

			if len(m) == 0 {
				return trimmed, nil
			}

			if trimmed != "" {
				m["#text"] = trimmed
			}

			return m, nil
		}
	}
} // }}}

// func addChild {{{

// A second sibling of the same name turns the entry into a list.
func addChild(m map[string]any, name string, val any) {
	prev, ok := m[name]
	if !ok {
		m[name] = val
		return
	}

	if list, ok := prev.([]any); ok {
		m[name] = append(list, val)
		return
	}

	m[name] = []any{prev, val}
} // }}}

// func escape {{{

func escape(buf *bytes.Buffer, s string) error {
	return xml.EscapeText(buf, []byte(s))
} // }}}

// func validName {{{

// Close enough to the XML name rules for config-shaped data: leading
// letter or underscore, then letters, digits, and the usual name
// punctuation.
func validName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '_':
		case i > 0 && (r >= '0' && r <= '9'):
		case i > 0 && (r == '-' || r == '.' || r == ':'):
		default:
			return false
		}
	}

	return true
} // }}}

// func isList {{{

func isList(v any) bool {
	if v == nil {
		return false
	}

	if _, ok := v.([]byte); ok {
		return false
	}

	k := reflect.TypeOf(v).Kind()

	return k == reflect.Slice || k == reflect.Array
} // }}}

// func isMapMisc {{{

// A map that is not map[string]any can not round-trip, better to say
// so than to render %v garbage.
func isMapMisc(v any) bool {
	if v == nil {
		return false
	}

	if _, ok := v.(map[string]any); ok {
		return false
	}

	return reflect.TypeOf(v).Kind() == reflect.Map
} // }}}
