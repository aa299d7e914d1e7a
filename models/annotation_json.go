package models

import (
	"encoding/json"
	"fmt"

	"github.com/SergeiSkv/NullGuard/fqname"
)

const (
	argKindString = "string"
	argKindEnum   = "enum"
	argKindRaw    = "raw"
)

type annotationArgumentJSON struct {
	Name  string        `json:"name,omitempty"`
	Kind  string        `json:"kind"`
	Text  string        `json:"text,omitempty"`
	Enum  fqname.FqName `json:"enum,omitempty"`
	Entry string        `json:"entry,omitempty"`
}

// MarshalJSON tags the value with its kind so it decodes back to the same Go type.
func (a AnnotationArgument) MarshalJSON() ([]byte, error) {
	out := annotationArgumentJSON{Name: a.Name}
	switch v := a.Value.(type) {
	case StringValue:
		out.Kind, out.Text = argKindString, string(v)
	case EnumValue:
		out.Kind, out.Enum, out.Entry = argKindEnum, v.Enum, v.Entry
	case RawValue:
		out.Kind, out.Text = argKindRaw, string(v)
	case nil:
		out.Kind = argKindRaw
	default:
		return nil, fmt.Errorf("unsupported annotation argument %T", a.Value)
	}
	return json.Marshal(out)
}

func (a *AnnotationArgument) UnmarshalJSON(data []byte) error {
	var in annotationArgumentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	a.Name = in.Name
	switch in.Kind {
	case argKindString:
		a.Value = StringValue(in.Text)
	case argKindEnum:
		a.Value = EnumValue{Enum: in.Enum, Entry: in.Entry}
	case argKindRaw:
		a.Value = RawValue(in.Text)
	default:
		return fmt.Errorf("unknown annotation argument kind %q", in.Kind)
	}
	return nil
}
