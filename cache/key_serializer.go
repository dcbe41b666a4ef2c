package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// MaxParamsLength is the longest serialized params segment kept verbatim.
// Longer segments are replaced by their xxhash digest so keys stay bounded.
const MaxParamsLength = 256

// TagPrefix returns the key prefix shared by every entry stored under tag.
func TagPrefix(tag string) string {
	return tag + KeySeparator
}

// defaultKeySerializer implements KeySerializer using reflection-based serialization.
// Maps are emitted with sorted keys so url.Values built in any order produce the same key.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key as tag::path[::params].
// Params that serialize to nothing (nil, empty maps) do not add a segment,
// so a bare read and a read with empty params share one entry.
func (s *defaultKeySerializer) SerializeKey(tag, path string, params ...any) string {
	parts := []string{tag, path}

	var args []string
	for _, p := range params {
		if isEmptyParam(p) {
			continue
		}
		args = append(args, s.serializeValue(p))
	}

	if len(args) > 0 {
		segment := strings.Join(args, KeySeparator)
		if len(segment) > MaxParamsLength {
			segment = "xxh:" + strconv.FormatUint(xxhash.Sum64String(segment), 16)
		}
		parts = append(parts, segment)
	}

	return strings.Join(parts, KeySeparator)
}

func isEmptyParam(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := rv.Type()

	switch rt.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return s.serializeList("slice", rv)
	case reflect.Array:
		return s.serializeList("array", rv)
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)
	case reflect.Struct:
		return s.serializeStruct(rv, rt)
	case reflect.Func, reflect.Chan:
		return fmt.Sprintf("%s:%p", rt.Kind(), v)
	}

	if isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

func (s *defaultKeySerializer) serializeList(label string, rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)
	for i := 0; i < length; i++ {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", label, length, strings.Join(parts, ","))
}

// serializeMap emits key=value pairs ordered by the serialized key.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	type pair struct{ key, value string }

	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{
			key:   s.serializeValue(iter.Key().Interface()),
			value: s.serializeValue(iter.Value().Interface()),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.key + "=" + p.value
	}
	return fmt.Sprintf("map[%d]:{%s}", len(out), strings.Join(out, ","))
}

func (s *defaultKeySerializer) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if !fv.CanInterface() {
			continue
		}
		parts = append(parts, field.Name+":"+s.serializeValue(fv.Interface()))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback is the last resort for kinds the reflection walk does not cover.
func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := sonic.Marshal(v)
	if err != nil {
		return "fallback:" + reflect.TypeOf(v).String()
	}
	return "json:" + string(data)
}
