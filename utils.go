package vulkanitos

import (
	"unsafe"
)

const end = "\x00"
const endChar byte = '\x00'

// toBytes views size bytes starting at ptr as a byte slice.
func toBytes(ptr unsafe.Pointer, size int) []byte {
	if ptr == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), size)
}

// ValueBytes returns the in-memory representation of *v, used to copy
// uniform payloads into mapped memory.
func ValueBytes[T any](v *T) []byte {
	return toBytes(unsafe.Pointer(v), int(unsafe.Sizeof(*v)))
}

func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

// safeStrings returns a null terminated copy of list; the input is left untouched.
func safeStrings(list []string) []string {
	ret := make([]string, len(list))
	for i := range list {
		ret[i] = safeString(list[i])
	}
	return ret
}

func alignUp(a, align uint64) uint64 {
	if align == 0 {
		return a
	}
	m := a % align
	if m == 0 {
		return a
	}
	return a - m + align
}

// missing returns the items of want that are not in have.
func missing(have, want []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	var ret []string
	for _, w := range want {
		if _, ok := set[w]; !ok {
			ret = append(ret, w)
		}
	}
	return ret
}
