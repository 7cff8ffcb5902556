package typeid

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// ID identifies a message type by the shape of its definition. Two
// programs that declare the same type (same name, same exported fields
// in the same order, same field types) compute the same ID, regardless
// of the package the type lives in. Type arguments of generic types are
// named without their package too, so Box[a.T] and Box[b.T] agree when
// both T have the same shape. Types declared inside a function carry
// their own scope in type argument names and only match themselves.
type ID [32]byte

// Named is implemented by message types that pin their identity to a
// name rather than to their shape. Renaming a field of a Named type
// does not change its ID.
type Named interface {
	MessageTypeName() string
}

var namedType = reflect.TypeOf((*Named)(nil)).Elem()

// domainKey separates type ids from any other BLAKE3 keyed hash of the
// same description. Changing it changes every ID.
var domainKey = [32]byte{
	'm', 's', 'g', 's', 't', 'r', 'e', 'a', 'm', '.', 't', 'y', 'p', 'e', 'i', 'd',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Of returns the ID of T.
func Of[T any]() ID {
	return OfType(reflect.TypeFor[T]())
}

// OfType returns the ID of t.
func OfType(t reflect.Type) ID {
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("typeid: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(Describe(t)))

	var id ID
	copy(id[:], hasher.Sum(nil))
	return id
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 bytes of the ID in hex, for log output.
func (id ID) Short() string {
	return hex.EncodeToString(id[:8])
}

// Describe returns the canonical shape description that OfType hashes.
func Describe(t reflect.Type) string {
	d := describer{
		active: make(map[reflect.Type]int),
	}
	d.describe(t)
	return d.b.String()
}

type describer struct {
	b      strings.Builder
	active map[reflect.Type]int
}

func (d *describer) describe(t reflect.Type) {
	if name, ok := messageTypeName(t); ok {
		d.b.WriteString("name(")
		d.b.WriteString(strconv.Quote(name))
		d.b.WriteString(")")
		return
	}

	// only named types can recurse
	if t.Name() != "" {
		if depth, ok := d.active[t]; ok {
			fmt.Fprintf(&d.b, "ref(%d)", depth)
			return
		}
		d.active[t] = len(d.active)
		defer delete(d.active, t)

		d.b.WriteString(unqualifiedName(t))
		d.b.WriteString("=")
	}

	switch t.Kind() {
	case reflect.Pointer:
		d.b.WriteString("*")
		d.describe(t.Elem())

	case reflect.Slice:
		d.b.WriteString("[]")
		d.describe(t.Elem())

	case reflect.Array:
		fmt.Fprintf(&d.b, "[%d]", t.Len())
		d.describe(t.Elem())

	case reflect.Map:
		d.b.WriteString("map[")
		d.describe(t.Key())
		d.b.WriteString("]")
		d.describe(t.Elem())

	case reflect.Struct:
		d.b.WriteString("struct{")
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			d.b.WriteString(field.Name)
			d.b.WriteString(" ")
			d.describe(field.Type)
			if tag, ok := wireTag(field.Tag); ok {
				d.b.WriteString(" ")
				d.b.WriteString(strconv.Quote(tag))
			}
			d.b.WriteString(";")
		}
		d.b.WriteString("}")

	case reflect.Interface:
		d.b.WriteString("interface{")
		for i := 0; i < t.NumMethod(); i++ {
			d.b.WriteString(t.Method(i).Name)
			d.b.WriteString(";")
		}
		d.b.WriteString("}")

	default:
		d.b.WriteString(t.Kind().String())
	}
}

// packageQualifier matches the import path prefix of a type argument,
// as in the "example.com/pkg." of Box[example.com/pkg.T].
var packageQualifier = regexp.MustCompile(`[A-Za-z0-9_~./-]+\.`)

// unqualifiedName returns the name of t with package paths removed from
// its type arguments.
func unqualifiedName(t reflect.Type) string {
	name := t.Name()
	open := strings.IndexByte(name, '[')
	if open < 0 {
		return name
	}
	return name[:open] + packageQualifier.ReplaceAllString(name[open:], "")
}

// wireTag returns the struct tag entries that change how a field is
// encoded on the wire.
func wireTag(tag reflect.StructTag) (string, bool) {
	var parts []string
	for _, key := range []string{"cbor", "json"} {
		if value, ok := tag.Lookup(key); ok {
			parts = append(parts, key+":"+strconv.Quote(value))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func messageTypeName(t reflect.Type) (string, bool) {
	switch t.Kind() {
	case reflect.Interface:
		return "", false
	case reflect.Pointer:
		if t.Implements(namedType) {
			return reflect.New(t.Elem()).Interface().(Named).MessageTypeName(), true
		}
		return "", false
	}
	if t.Implements(namedType) {
		return reflect.Zero(t).Interface().(Named).MessageTypeName(), true
	}
	if reflect.PointerTo(t).Implements(namedType) {
		return reflect.New(t).Interface().(Named).MessageTypeName(), true
	}
	return "", false
}
