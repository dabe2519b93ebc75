package service

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/syncscore"
)

// Fingerprint identifies an input independent of sample order. Non-finite
// numbers hash as NaN, +Inf and -Inf, so they stay distinct from any finite
// value and never fail.
func Fingerprint(in model.Input) string {
	h := sha256.New()
	writeValue(h, reflect.ValueOf(syncscore.Canonical(in)))
	return hex.EncodeToString(h.Sum(nil))
}

// writeValue writes a self-delimiting encoding of v. Every value is tagged
// with its kind so that, for example, a nil pointer and an empty string differ.
func writeValue(h hash.Hash, v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			_, _ = io.WriteString(h, "n;")
			return
		}
		_, _ = io.WriteString(h, "p")
		writeValue(h, v.Elem())
	case reflect.Struct:
		_, _ = io.WriteString(h, "{")
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			_, _ = io.WriteString(h, t.Field(i).Name+":")
			writeValue(h, v.Field(i))
		}
		_, _ = io.WriteString(h, "}")
	case reflect.Slice, reflect.Array:
		_, _ = io.WriteString(h, "["+strconv.Itoa(v.Len())+"|")
		for i := 0; i < v.Len(); i++ {
			writeValue(h, v.Index(i))
		}
		_, _ = io.WriteString(h, "]")
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		_, _ = io.WriteString(h, "m"+strconv.Itoa(len(keys))+"|")
		for _, k := range keys {
			writeValue(h, k)
			writeValue(h, v.MapIndex(k))
		}
	case reflect.String:
		_, _ = io.WriteString(h, "s"+strconv.Quote(v.String())+";")
	case reflect.Float32, reflect.Float64:
		_, _ = io.WriteString(h, "f"+strconv.FormatFloat(v.Float(), 'g', -1, 64)+";")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_, _ = io.WriteString(h, "i"+strconv.FormatInt(v.Int(), 10)+";")
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_, _ = io.WriteString(h, "u"+strconv.FormatUint(v.Uint(), 10)+";")
	case reflect.Bool:
		_, _ = io.WriteString(h, "b"+strconv.FormatBool(v.Bool())+";")
	}
}
