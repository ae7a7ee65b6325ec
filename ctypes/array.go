package ctypes

import (
	"math"
	"strconv"
	"sync"
)

type Array struct {
	name string
	elem Type
	n    int
}

type arrayKey struct {
	elem Type
	n    int
}

var arrayCache sync.Map

// ArrayOf returns the array type of n elements of elem. Like reflect.ArrayOf
// it panics on a negative length, a size that overflows int or an element
// without storage, and returns the same descriptor for the same arguments.
func ArrayOf(elem Type, n int) *Array {
	if n < 0 {
		panic("ctypes: negative array length")
	} else if err := Storable(elem); err != nil {
		panic("ctypes: array element: " + err.Error())
	} else if size := elem.Size(); size > 0 && n > math.MaxInt/size {
		panic("ctypes: array size overflows int")
	}
	key := arrayKey{elem, n}
	if v, ok := arrayCache.Load(key); ok {
		return v.(*Array)
	}
	v, _ := arrayCache.LoadOrStore(key, &Array{elem.Name() + "[" + strconv.Itoa(n) + "]", elem, n})
	return v.(*Array)
}

func (*Array) ctype() {}

func (a *Array) Name() string {
	return a.name
}

func (a *Array) Kind() Kind {
	return KindArray
}

func (a *Array) Size() int {
	return a.elem.Size() * a.n
}

func (a *Array) Elem() Type {
	return a.elem
}

func (a *Array) Len() int {
	return a.n
}
