// Copyright 2019 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package mu provides marshalling and unmarshalling between go types and the
wire format used by the device command interface.

Base types (unsigned integers and booleans) are converted to and from their
big-endian representation. Byte slices are treated as sized buffers with a
16-bit size field, other slices are treated as lists with a 32-bit length
field, and structs are marshalled field by field in order of definition.

A pointer to a struct field with the `tpm2:"sized"` tag is marshalled as a
sized struct with a 16-bit size field, where a nil pointer corresponds to a
zero size. Slice fields with the `tpm2:"raw"` tag are marshalled without a
size or length field - slices unmarshalled this way must be pre-allocated
by the caller. The Sized and Raw functions provide the same behaviour for
values at the top level of an argument list.

Union structs implement the Union interface and have a single data member,
which either has a type of interface{} or a concrete type. The member that
is marshalled or unmarshalled is selected by the value of a field of the
enclosing struct, named by the `tpm2:"selector:Field"` tag on the union
member. A nil type returned from Select corresponds to an empty union
member, for which no data is marshalled.

Types can override the default behaviour by implementing the
CustomMarshaller interface.
*/
package mu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"
)

var (
	customMarshallerType reflect.Type = reflect.TypeOf((*CustomMarshaller)(nil)).Elem()
	unionType            reflect.Type = reflect.TypeOf((*Union)(nil)).Elem()
	rawBytesType         reflect.Type = reflect.TypeOf(RawBytes(nil))
)

// CustomMarshaller is implemented by types that require custom marshalling
// behaviour. Implementations must be able to unmarshal what they marshal.
type CustomMarshaller interface {
	Marshal(buf io.Writer) error
	Unmarshal(buf io.Reader) error
}

// Union is implemented by union structs. Select returns the type of the
// union member associated with the supplied selector value (the pointer
// type for struct members), nil if the selector corresponds to an empty
// member, or an error if the selector value is invalid.
type Union interface {
	Select(selector reflect.Value) (reflect.Type, error)
}

// RawBytes is a byte slice that is marshalled without a size field. The
// slice must be pre-allocated when unmarshalling.
type RawBytes []byte

// InvalidSelectorError may be returned as a wrapped error from
// UnmarshalFromBytes or UnmarshalFromReader when a union selector field
// contains a value with no associated union member.
type InvalidSelectorError struct {
	Selector reflect.Value
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("invalid selector value: %v", e.Selector)
}

type wrappedValue struct {
	value interface{}
	opts  muOptions
}

// Sized converts the supplied value, which must be a pointer to a struct,
// to a sized value with a 16-bit size field at the top level of an
// argument list. A nil pointer is marshalled as a zero size.
func Sized(val interface{}) *wrappedValue {
	return &wrappedValue{value: val, opts: muOptions{sized: true}}
}

// Raw converts the supplied slice to a raw value with no size or length
// field at the top level of an argument list.
func Raw(val interface{}) *wrappedValue {
	return &wrappedValue{value: val, opts: muOptions{raw: true}}
}

type muOptions struct {
	selector string
	sized    bool
	raw      bool
}

func parseStructFieldMuOptions(f reflect.StructField) (out muOptions) {
	s := f.Tag.Get("tpm2")
	for _, part := range strings.Split(s, ",") {
		switch {
		case strings.HasPrefix(part, "selector:"):
			out.selector = part[len("selector:"):]
		case part == "sized":
			out.sized = true
		case part == "raw":
			out.raw = true
		}
	}
	return
}

func isUnion(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	return t.Implements(unionType) || reflect.PtrTo(t).Implements(unionType)
}

func isSizedBuffer(t reflect.Type) bool {
	if t == rawBytesType {
		return false
	}
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func hasCustomMarshallerImpl(t reflect.Type) bool {
	if t.Kind() != reflect.Ptr {
		t = reflect.PtrTo(t)
	}
	return t.Implements(customMarshallerType)
}

func makeSizedStructReader(buf io.Reader) (io.Reader, error) {
	var size uint16
	// Sized structures have a 16-bit size field
	if err := binary.Read(buf, binary.BigEndian, &size); err != nil {
		return nil, fmt.Errorf("cannot read size of sized struct: %w", err)
	}
	if size == 0 {
		return nil, nil
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(buf, b); err != nil {
		return nil, fmt.Errorf("cannot read contents of sized struct: %w", err)
	}
	return bytes.NewReader(b), nil
}

type muContext struct {
	container  reflect.Value
	options    muOptions
	parentType reflect.Type
}

func beginStructCtx(ctx *muContext, s reflect.Value, i int) *muContext {
	return &muContext{container: s, options: parseStructFieldMuOptions(s.Type().Field(i)), parentType: s.Type()}
}

func beginUnionCtx(ctx *muContext, u reflect.Value) *muContext {
	return &muContext{container: u, parentType: u.Type()}
}

func beginSliceCtx(ctx *muContext, s reflect.Value) *muContext {
	return &muContext{container: s, parentType: s.Type()}
}

func beginPtrCtx(ctx *muContext, p reflect.Value) *muContext {
	opts := ctx.options
	opts.sized = false
	return &muContext{container: ctx.container, options: opts, parentType: p.Type()}
}

func arrivedFromPointer(ctx *muContext, v reflect.Value) bool {
	return ctx.parentType == reflect.PtrTo(v.Type())
}

// unionDataValue returns the data member of the union struct, which is
// its first field.
func unionDataValue(u reflect.Value) (reflect.Value, error) {
	if u.NumField() == 0 {
		return reflect.Value{}, fmt.Errorf("union type %s has no data member", u.Type())
	}
	return u.Field(0), nil
}

func selectUnionDataType(u reflect.Value, ctx *muContext) (reflect.Type, error) {
	if !ctx.container.IsValid() {
		return nil, errors.New("not inside a container")
	}
	if ctx.options.selector == "" {
		return nil, errors.New("no selector member defined in container")
	}

	selectorVal := ctx.container.FieldByName(ctx.options.selector)
	if !selectorVal.IsValid() {
		return nil, fmt.Errorf("selector name %s does not reference a valid field inside container type %s",
			ctx.options.selector, ctx.container.Type())
	}

	v := u
	if !v.Type().Implements(unionType) {
		if !v.CanAddr() {
			return nil, fmt.Errorf("union type %s is not addressable", v.Type())
		}
		v = v.Addr()
	}
	t, err := v.Interface().(Union).Select(selectorVal)
	if err != nil {
		return nil, fmt.Errorf("cannot select union data type: %w", err)
	}
	return t, nil
}

func marshalSizedPtr(buf io.Writer, ptr reflect.Value, ctx *muContext) error {
	if ptr.IsNil() {
		// Nil pointers for sized structs are marshalled with a zero size field
		return binary.Write(buf, binary.BigEndian, uint16(0))
	}
	if isUnion(ptr.Type().Elem()) {
		return errors.New("cannot be both sized and a union")
	}

	tmpBuf := new(bytes.Buffer)
	if err := marshalValue(tmpBuf, ptr.Elem(), beginPtrCtx(ctx, ptr)); err != nil {
		return fmt.Errorf("cannot marshal sized struct: %w", err)
	}
	if tmpBuf.Len() > math.MaxUint16 {
		return fmt.Errorf("sized struct length of %d is too large", tmpBuf.Len())
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(tmpBuf.Len())); err != nil {
		return fmt.Errorf("cannot write size of sized struct to output buffer: %w", err)
	}
	if _, err := tmpBuf.WriteTo(buf); err != nil {
		return fmt.Errorf("cannot write marshalled sized struct to output buffer: %w", err)
	}
	return nil
}

func marshalPtr(buf io.Writer, ptr reflect.Value, ctx *muContext) error {
	if ctx.options.sized {
		return marshalSizedPtr(buf, ptr, ctx)
	}
	if ptr.IsNil() {
		// Nil pointers are marshalled as the zero value of the pointed-to type
		return marshalValue(buf, reflect.New(ptr.Type().Elem()).Elem(), beginPtrCtx(ctx, ptr))
	}
	return marshalValue(buf, ptr.Elem(), beginPtrCtx(ctx, ptr))
}

func marshalUnion(buf io.Writer, u reflect.Value, ctx *muContext) error {
	t, err := selectUnionDataType(u, ctx)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	f, err := unionDataValue(u)
	if err != nil {
		return err
	}

	var data reflect.Value
	switch {
	case f.Kind() == reflect.Interface && f.IsNil():
		// Nil data is marshalled as the zero value of the selected type
		data = reflect.New(t).Elem()
	case f.Kind() == reflect.Interface:
		data = f.Elem()
	default:
		data = f
	}

	if !data.Type().ConvertibleTo(t) {
		return fmt.Errorf("data has incorrect type %s (expected %s)", data.Type(), t)
	}

	// Values obtained from an interface data member are not addressable,
	// and custom marshaller implementations require an addressable value.
	tmp := reflect.New(t).Elem()
	tmp.Set(data.Convert(t))

	return marshalValue(buf, tmp, beginUnionCtx(ctx, u))
}

func marshalStruct(buf io.Writer, s reflect.Value, ctx *muContext) error {
	switch {
	case ctx.options.sized && isUnion(s.Type()):
		return errors.New("cannot be both sized and a union")
	case ctx.options.sized && ctx.container.IsValid() && !arrivedFromPointer(ctx, s):
		return fmt.Errorf("sized struct inside container type %s is not referenced via a pointer",
			ctx.container.Type())
	case ctx.options.sized && !ctx.container.IsValid():
		return errors.New("sized struct is not referenced via a pointer")
	case isUnion(s.Type()):
		if err := marshalUnion(buf, s, ctx); err != nil {
			return fmt.Errorf("error marshalling union struct: %w", err)
		}
		return nil
	}

	for i := 0; i < s.NumField(); i++ {
		if err := marshalValue(buf, s.Field(i), beginStructCtx(ctx, s, i)); err != nil {
			return fmt.Errorf("cannot marshal field %s: %w", s.Type().Field(i).Name, err)
		}
	}
	return nil
}

func marshalSlice(buf io.Writer, slice reflect.Value, ctx *muContext) error {
	raw := ctx.options.raw || slice.Type() == rawBytesType

	// Marshal size field
	switch {
	case raw:
		// No size field - we've been instructed to marshal the slice as it is
	case isSizedBuffer(slice.Type()):
		// Sized byte-buffers have a 16-bit size field
		if slice.Len() > math.MaxUint16 {
			return fmt.Errorf("sized buffer length of %d is too large", slice.Len())
		}
		if err := binary.Write(buf, binary.BigEndian, uint16(slice.Len())); err != nil {
			return fmt.Errorf("cannot write size of sized buffer: %w", err)
		}
	default:
		// Treat all other slices as a list, which have a 32-bit size field
		if int64(slice.Len()) > math.MaxUint32 {
			return fmt.Errorf("list length of %d is too large", slice.Len())
		}
		if err := binary.Write(buf, binary.BigEndian, uint32(slice.Len())); err != nil {
			return fmt.Errorf("cannot write size of list: %w", err)
		}
	}

	if slice.Type().Elem().Kind() == reflect.Uint8 {
		// Shortcut for byte slices
		if _, err := buf.Write(slice.Bytes()); err != nil {
			return fmt.Errorf("cannot write byte slice directly to output buffer: %w", err)
		}
		return nil
	}

	for i := 0; i < slice.Len(); i++ {
		if err := marshalValue(buf, slice.Index(i), beginSliceCtx(ctx, slice)); err != nil {
			return fmt.Errorf("cannot marshal value at index %d: %w", i, err)
		}
	}
	return nil
}

func marshalValue(buf io.Writer, val reflect.Value, ctx *muContext) error {
	if hasCustomMarshallerImpl(val.Type()) {
		origVal := val
		switch {
		case val.Kind() != reflect.Ptr && !val.CanAddr():
			return fmt.Errorf("cannot marshal non-addressable non-pointer type %s with custom "+
				"marshaller", val.Type())
		case val.Kind() != reflect.Ptr:
			val = val.Addr()
		case val.IsNil():
			return fmt.Errorf("cannot marshal nil pointer type %s with custom marshaller", val.Type())
		}
		if err := val.Interface().(CustomMarshaller).Marshal(buf); err != nil {
			return fmt.Errorf("cannot marshal type %s with custom marshaller: %w", origVal.Type(), err)
		}
		return nil
	}

	if ctx == nil {
		ctx = new(muContext)
	}

	switch val.Kind() {
	case reflect.Ptr:
		if err := marshalPtr(buf, val, ctx); err != nil {
			return fmt.Errorf("cannot marshal pointer type %s: %w", val.Type(), err)
		}
	case reflect.Struct:
		if err := marshalStruct(buf, val, ctx); err != nil {
			return fmt.Errorf("cannot marshal struct type %s: %w", val.Type(), err)
		}
	case reflect.Slice:
		if err := marshalSlice(buf, val, ctx); err != nil {
			return fmt.Errorf("cannot marshal slice type %s: %w", val.Type(), err)
		}
	case reflect.Array, reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.UnsafePointer:
		return fmt.Errorf("cannot marshal type %s: unsupported kind %s", val.Type(), val.Kind())
	default:
		if err := binary.Write(buf, binary.BigEndian, val.Interface()); err != nil {
			return fmt.Errorf("cannot marshal type %s: write to buffer failed: %w", val.Type(), err)
		}
	}
	return nil
}

func unmarshalSizedPtr(buf io.Reader, ptr reflect.Value, ctx *muContext) error {
	srcBuf, err := makeSizedStructReader(buf)
	if err != nil {
		return err
	}
	if srcBuf == nil {
		// If the size of the sized struct is zero, clear the pointer
		if !ptr.CanSet() {
			return errors.New("cannot clear pointer to zero sized struct")
		}
		ptr.Set(reflect.Zero(ptr.Type()))
		return nil
	}
	if isUnion(ptr.Type().Elem()) {
		return errors.New("cannot be both sized and a union")
	}

	if ptr.IsNil() {
		if !ptr.CanSet() {
			return fmt.Errorf("cannot allocate value for nil pointer type %s", ptr.Type())
		}
		ptr.Set(reflect.New(ptr.Type().Elem()))
	}
	return unmarshalValue(srcBuf, ptr.Elem(), beginPtrCtx(ctx, ptr))
}

func unmarshalPtr(buf io.Reader, ptr reflect.Value, ctx *muContext) error {
	if ctx.options.sized {
		return unmarshalSizedPtr(buf, ptr, ctx)
	}
	if ptr.IsNil() {
		if !ptr.CanSet() {
			return fmt.Errorf("cannot allocate value for nil pointer type %s", ptr.Type())
		}
		ptr.Set(reflect.New(ptr.Type().Elem()))
	}
	return unmarshalValue(buf, ptr.Elem(), beginPtrCtx(ctx, ptr))
}

func unmarshalUnion(buf io.Reader, u reflect.Value, ctx *muContext) error {
	t, err := selectUnionDataType(u, ctx)
	if err != nil {
		return err
	}

	f, err := unionDataValue(u)
	if err != nil {
		return err
	}
	if !f.CanSet() {
		return fmt.Errorf("cannot set data member of union type %s", u.Type())
	}

	if t == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}

	// Struct members are selected by pointer type and are stored in an
	// interface data member as pointers. Other members are stored directly.
	var data reflect.Value
	if t.Kind() == reflect.Ptr {
		data = reflect.New(t.Elem())
	} else {
		data = reflect.New(t).Elem()
	}

	target := data
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	if err := unmarshalValue(buf, target, beginUnionCtx(ctx, u)); err != nil {
		return err
	}

	if f.Kind() == reflect.Interface {
		f.Set(data)
		return nil
	}
	if !data.Type().ConvertibleTo(f.Type()) {
		return fmt.Errorf("data has incorrect type %s (expected %s)", data.Type(), f.Type())
	}
	f.Set(data.Convert(f.Type()))
	return nil
}

func unmarshalStruct(buf io.Reader, s reflect.Value, ctx *muContext) error {
	switch {
	case ctx.options.sized && isUnion(s.Type()):
		return errors.New("cannot be both sized and a union")
	case ctx.options.sized && ctx.container.IsValid() && !arrivedFromPointer(ctx, s):
		return fmt.Errorf("sized struct inside container type %s is not referenced via a pointer",
			ctx.container.Type())
	case ctx.options.sized && !ctx.container.IsValid():
		return errors.New("sized struct is not referenced via a pointer")
	case isUnion(s.Type()):
		if err := unmarshalUnion(buf, s, ctx); err != nil {
			return fmt.Errorf("error unmarshalling union struct: %w", err)
		}
		return nil
	}

	for i := 0; i < s.NumField(); i++ {
		if err := unmarshalValue(buf, s.Field(i), beginStructCtx(ctx, s, i)); err != nil {
			return fmt.Errorf("cannot unmarshal field %s: %w", s.Type().Field(i).Name, err)
		}
	}
	return nil
}

func unmarshalSlice(buf io.Reader, slice reflect.Value, ctx *muContext) error {
	raw := ctx.options.raw || slice.Type() == rawBytesType

	var l int
	switch {
	case raw:
		if slice.IsNil() {
			if slice.Type().Elem().Kind() == reflect.Uint8 {
				return errors.New("nil raw byte slice")
			}
			return errors.New("nil raw slice")
		}
		l = slice.Len()
	case isSizedBuffer(slice.Type()):
		var size uint16
		if err := binary.Read(buf, binary.BigEndian, &size); err != nil {
			return fmt.Errorf("cannot read size of sized buffer: %w", err)
		}
		l = int(size)
	default:
		var length uint32
		if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
			return fmt.Errorf("cannot read size of list: %w", err)
		}
		l = int(length)
	}

	if !raw {
		if !slice.CanSet() {
			return fmt.Errorf("cannot allocate value for slice type %s", slice.Type())
		}
		slice.Set(reflect.MakeSlice(slice.Type(), l, l))
	}

	if slice.Type().Elem().Kind() == reflect.Uint8 {
		// Shortcut for byte slices
		if _, err := io.ReadFull(buf, slice.Bytes()); err != nil {
			return fmt.Errorf("cannot read byte slice directly from input buffer: %w", err)
		}
		return nil
	}

	for i := 0; i < slice.Len(); i++ {
		if err := unmarshalValue(buf, slice.Index(i), beginSliceCtx(ctx, slice)); err != nil {
			return fmt.Errorf("cannot unmarshal value at index %d: %w", i, err)
		}
	}
	return nil
}

func unmarshalValue(buf io.Reader, val reflect.Value, ctx *muContext) error {
	if hasCustomMarshallerImpl(val.Type()) {
		origVal := val
		switch {
		case val.Kind() != reflect.Ptr && !val.CanAddr():
			return fmt.Errorf("cannot unmarshal non-addressable non-pointer type %s with custom "+
				"marshaller", val.Type())
		case val.Kind() != reflect.Ptr:
			val = val.Addr()
		case val.IsNil():
			if !val.CanSet() {
				return fmt.Errorf("cannot allocate value for nil pointer type %s with custom "+
					"marshaller", val.Type())
			}
			val.Set(reflect.New(val.Type().Elem()))
		}
		if err := val.Interface().(CustomMarshaller).Unmarshal(buf); err != nil {
			return fmt.Errorf("cannot unmarshal type %s with custom marshaller: %w", origVal.Type(), err)
		}
		return nil
	}

	if ctx == nil {
		ctx = new(muContext)
	}

	switch val.Kind() {
	case reflect.Ptr:
		if err := unmarshalPtr(buf, val, ctx); err != nil {
			return fmt.Errorf("cannot unmarshal pointer type %s: %w", val.Type(), err)
		}
	case reflect.Struct:
		if err := unmarshalStruct(buf, val, ctx); err != nil {
			return fmt.Errorf("cannot unmarshal struct type %s: %w", val.Type(), err)
		}
	case reflect.Slice:
		if err := unmarshalSlice(buf, val, ctx); err != nil {
			return fmt.Errorf("cannot unmarshal slice type %s: %w", val.Type(), err)
		}
	case reflect.Array, reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.UnsafePointer:
		return fmt.Errorf("cannot unmarshal type %s: unsupported kind %s", val.Type(), val.Kind())
	default:
		if !val.CanAddr() {
			return fmt.Errorf("cannot unmarshal non-addressable type %s", val.Type())
		}
		if err := binary.Read(buf, binary.BigEndian, val.Addr().Interface()); err != nil {
			return fmt.Errorf("cannot unmarshal type %s: read from buffer failed: %w", val.Type(), err)
		}
	}
	return nil
}

func resolveWrapper(val interface{}) (interface{}, muOptions) {
	if w, ok := val.(*wrappedValue); ok {
		return w.value, w.opts
	}
	return val, muOptions{}
}

// TPMKind indicates the TPM wire representation associated with a go type.
type TPMKind int

const (
	// TPMKindUnsupported indicates a type that cannot be marshalled.
	TPMKindUnsupported TPMKind = iota

	// TPMKindPrimitive indicates a type that is marshalled as its
	// big-endian representation.
	TPMKindPrimitive

	// TPMKindSized indicates a type that is marshalled with a 16-bit
	// size field.
	TPMKindSized

	// TPMKindList indicates a type that is marshalled with a 32-bit
	// length field.
	TPMKindList

	// TPMKindStruct indicates a type that is marshalled field by field.
	TPMKindStruct

	// TPMKindUnion indicates a union type, for which the marshalled
	// member is chosen by a selector in the enclosing struct.
	TPMKindUnion

	// TPMKindCustom indicates a type that implements the
	// CustomMarshaller interface.
	TPMKindCustom

	// TPMKindRaw indicates a slice type that is marshalled without a
	// size or length field.
	TPMKindRaw
)

// DetermineTPMKind returns the TPMKind associated with the supplied value,
// indirecting through pointer types. Values wrapped with Sized or Raw are
// classified according to the wrapper.
func DetermineTPMKind(i interface{}) TPMKind {
	var opts muOptions
	i, opts = resolveWrapper(i)
	if i == nil {
		return TPMKindUnsupported
	}

	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch {
	case hasCustomMarshallerImpl(t):
		return TPMKindCustom
	case opts.raw:
		if t.Kind() != reflect.Slice {
			return TPMKindUnsupported
		}
		return TPMKindRaw
	case t == rawBytesType:
		return TPMKindRaw
	case opts.sized:
		if t.Kind() != reflect.Struct || isUnion(t) {
			return TPMKindUnsupported
		}
		return TPMKindSized
	case isUnion(t):
		return TPMKindUnion
	case t.Kind() == reflect.Struct:
		return TPMKindStruct
	case isSizedBuffer(t):
		return TPMKindSized
	case t.Kind() == reflect.Slice:
		return TPMKindList
	case t.Kind() == reflect.Bool, t.Kind() == reflect.Uint8, t.Kind() == reflect.Uint16,
		t.Kind() == reflect.Uint32, t.Kind() == reflect.Uint64:
		return TPMKindPrimitive
	default:
		return TPMKindUnsupported
	}
}

// MarshalToWriter marshals vals to buf in the device wire format, in the
// order they are provided.
func MarshalToWriter(buf io.Writer, vals ...interface{}) error {
	for _, val := range vals {
		val, opts := resolveWrapper(val)
		if err := marshalValue(buf, reflect.ValueOf(val), &muContext{options: opts}); err != nil {
			return err
		}
	}
	return nil
}

// MarshalToBytes marshals vals to a new byte slice in the device wire
// format, in the order they are provided.
func MarshalToBytes(vals ...interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := MarshalToWriter(buf, vals...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustMarshalToBytes is like MarshalToBytes, but panics on error.
func MustMarshalToBytes(vals ...interface{}) []byte {
	b, err := MarshalToBytes(vals...)
	if err != nil {
		panic(err)
	}
	return b
}

// UnmarshalFromReader unmarshals data from buf in the device wire format
// to vals, in the order they are provided. Each value must be a pointer to
// a destination.
func UnmarshalFromReader(buf io.Reader, vals ...interface{}) error {
	for _, val := range vals {
		val, opts := resolveWrapper(val)

		v := reflect.ValueOf(val)
		if v.Kind() != reflect.Ptr {
			return fmt.Errorf("cannot unmarshal to non-pointer type %s", v.Type())
		}
		if v.IsNil() {
			return fmt.Errorf("cannot unmarshal to nil pointer of type %s", v.Type())
		}

		if err := unmarshalValue(buf, v.Elem(), &muContext{options: opts}); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalFromBytes unmarshals data from b in the device wire format to
// vals, in the order they are provided, returning the number of bytes
// consumed. Each value must be a pointer to a destination.
func UnmarshalFromBytes(b []byte, vals ...interface{}) (int, error) {
	buf := bytes.NewReader(b)
	if err := UnmarshalFromReader(buf, vals...); err != nil {
		return len(b) - buf.Len(), err
	}
	return len(b) - buf.Len(), nil
}
