package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wnxd/microbind/ctypes"
)

type printer struct {
	w    io.Writer
	bold bool
	err  error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) header(format string, args ...any) {
	if p.bold {
		p.printf("\x1b[1m"+format+"\x1b[0m\n", args...)
	} else {
		p.printf(format+"\n", args...)
	}
}

func (p *printer) layout(name string, t ctypes.Type) {
	if t == nil {
		p.header("%s  void", name)
		return
	}
	p.header("%s  %s  size %d", name, t.Kind(), t.Size())
	switch t := t.(type) {
	case ctypes.Composite:
		tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			fmt.Fprintf(tw, "  %#06x\t%s\t%d\t%s\n", t.Offset(i), f.Name, ctypes.Sizeof(f.Type), typeString(f.Type))
		}
		if err := tw.Flush(); err != nil && p.err == nil {
			p.err = err
		}
	case *ctypes.Enum:
		for _, m := range t.Members() {
			p.printf("  %s = %d\n", m.Name, m.Value)
		}
	case *ctypes.Pointer:
		p.printf("  -> %s\n", typeString(t.Elem()))
	case *ctypes.Array:
		p.printf("  %d x %s\n", t.Len(), typeString(t.Elem()))
	}
}

func typeString(t ctypes.Type) string {
	if t == nil {
		return "VOID"
	}
	return t.Name()
}

func (p *printer) value(indent, name string, inst *ctypes.Instance) {
	switch t := inst.Type().(type) {
	case *ctypes.Struct:
		if t == ctypes.EFI_GUID {
			id, _ := inst.GUID("")
			p.printf("%s%s = {%s}\n", indent, name, id)
			return
		}
		p.composite(indent, name, t, inst)
	case *ctypes.Union:
		p.composite(indent, name, t, inst)
	case *ctypes.Array:
		if t.Elem().Kind().IsScalar() && t.Elem().Size() == 1 {
			p.printf("%s%s = [% x]\n", indent, name, inst.Bytes())
			return
		}
		p.printf("%s%s %s {\n", indent, name, t.Name())
		for i := 0; i < t.Len(); i++ {
			elem, _ := inst.Index(i)
			p.value(indent+"  ", fmt.Sprintf("[%d]", i), elem)
		}
		p.printf("%s}\n", indent)
	case *ctypes.Enum:
		v, _ := inst.Int("")
		if member, ok := t.NameOf(v); ok {
			p.printf("%s%s = %s (%d)\n", indent, name, member, v)
		} else {
			p.printf("%s%s = %d\n", indent, name, v)
		}
	case *ctypes.Pointer:
		v, _ := inst.Uint("")
		p.printf("%s%s = %#x\n", indent, name, v)
	case *ctypes.Primitive:
		if t.Signed() {
			v, _ := inst.Int("")
			p.printf("%s%s = %d\n", indent, name, v)
		} else {
			v, _ := inst.Uint("")
			p.printf("%s%s = %d (%#x)\n", indent, name, v, v)
		}
	}
}

func (p *printer) composite(indent, name string, t ctypes.Composite, inst *ctypes.Instance) {
	p.printf("%s%s %s {\n", indent, name, t.Name())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		sub, err := inst.Field(f.Name)
		if err != nil {
			p.err = err
			return
		}
		p.value(indent+"  ", f.Name, sub)
	}
	p.printf("%s}\n", indent)
}
