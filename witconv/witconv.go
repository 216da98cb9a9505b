package witconv

import (
	"fmt"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/types"
	"go.bytecodealliance.org/wit"
)

// Converter maps WIT types to descriptors. Type definitions are converted once,
// so a definition used in several places yields one shared descriptor.
type Converter struct {
	cache map[*wit.TypeDef]*types.Type
}

func NewConverter() *Converter {
	return &Converter{
		cache: make(map[*wit.TypeDef]*types.Type),
	}
}

// FromWIT converts t with a fresh Converter.
func FromWIT(t wit.Type) (*types.Type, error) {
	return NewConverter().Convert(t)
}

// Convert returns the descriptor for t.
func (c *Converter) Convert(t wit.Type) (*types.Type, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return types.Bool(), nil
	case wit.S8:
		return types.Int8(), nil
	case wit.S16:
		return types.Int16(), nil
	case wit.S32:
		return types.Int32(), nil
	case wit.S64:
		return types.Int64(), nil
	case wit.U8:
		return types.Uint8(), nil
	case wit.U16:
		return types.Uint16(), nil
	case wit.U32:
		return types.Uint32(), nil
	case wit.U64:
		return types.Uint64(), nil
	case wit.F32:
		return types.Float32(), nil
	case wit.F64:
		return types.Float64(), nil
	case wit.Char:
		return types.Char(), nil
	case wit.String:
		return types.String(types.UTF8), nil
	case *wit.TypeDef:
		return c.convertTypeDef(typ)
	case nil:
		return nil, errors.Unsupported(errors.PhaseLoad, "missing WIT type")
	}
	return nil, errors.Unsupported(errors.PhaseLoad, fmt.Sprintf("WIT type %T", t))
}

func (c *Converter) convertTypeDef(td *wit.TypeDef) (*types.Type, error) {
	if cached, ok := c.cache[td]; ok {
		return cached, nil
	}

	var (
		t   *types.Type
		err error
	)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		t, err = c.convertRecord(kind)
	case *wit.Tuple:
		t, err = c.convertTuple(kind)
	case *wit.List:
		var elem *types.Type
		if elem, err = c.Convert(kind.Type); err == nil {
			t = types.VarDim(elem)
		}
	case *wit.Option:
		var elem *types.Type
		if elem, err = c.Convert(kind.Type); err == nil {
			t = types.Option(elem)
		}
	case *wit.Enum:
		t, err = convertEnum(kind)
	case *wit.Variant, *wit.Result, *wit.Flags:
		err = errors.Unsupported(errors.PhaseLoad, fmt.Sprintf("WIT %s %s", kindName(kind), typeDefName(td)))
	case wit.Type:
		t, err = c.Convert(kind)
	default:
		err = errors.Unsupported(errors.PhaseLoad, fmt.Sprintf("WIT type definition %T", kind))
	}
	if err != nil {
		return nil, err
	}

	c.cache[td] = t
	return t, nil
}

func (c *Converter) convertRecord(r *wit.Record) (*types.Type, error) {
	fields := make([]types.Field, len(r.Fields))
	for i, f := range r.Fields {
		ft, err := c.Convert(f.Type)
		if err != nil {
			return nil, errors.Prepend(err, f.Name)
		}
		fields[i] = types.NewField(f.Name, ft)
	}
	return types.Struct(fields...), nil
}

func (c *Converter) convertTuple(tu *wit.Tuple) (*types.Type, error) {
	elems := make([]*types.Type, len(tu.Types))
	for i, et := range tu.Types {
		t, err := c.Convert(et)
		if err != nil {
			return nil, errors.Prepend(err, fmt.Sprintf("[%d]", i))
		}
		elems[i] = t
	}
	return types.Tuple(elems...), nil
}

func convertEnum(e *wit.Enum) (*types.Type, error) {
	if len(e.Cases) == 0 {
		return nil, errors.Load("enum without cases", nil)
	}
	cases := make([]any, len(e.Cases))
	for i, c := range e.Cases {
		cases[i] = c.Name
	}
	return types.Categorical(types.String(types.UTF8), cases...), nil
}

func kindName(k any) string {
	switch k.(type) {
	case *wit.Variant:
		return "variant"
	case *wit.Result:
		return "result"
	case *wit.Flags:
		return "flags"
	}
	return fmt.Sprintf("%T", k)
}

func typeDefName(td *wit.TypeDef) string {
	if td.Name != nil {
		return *td.Name
	}
	return "(anonymous)"
}

// Lookup finds the type definition called name in a decoded resolve.
func Lookup(resolve *wit.Resolve, name string) (*wit.TypeDef, bool) {
	if resolve == nil {
		return nil, false
	}
	for _, td := range resolve.TypeDefs {
		if td.Name != nil && *td.Name == name {
			return td, true
		}
	}
	return nil, false
}
