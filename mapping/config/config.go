package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// Attribute is the mapping of one record attribute.
type Attribute struct {
	Entity       string `yaml:"entity"`
	Predicate    string `yaml:"predicate"`
	Type         string `yaml:"type"`
	Language     string `yaml:"language"`
	InstanceOf   string `yaml:"instanceOf"`
	PartOf       string `yaml:"partOf"`
	GenerateWith string `yaml:"generateWith"`
	Datatype     string `yaml:"datatype"`
}

type KeyAttribute struct {
	Key   string
	Order int
	Attribute
}

// Mapping is the decoded mapping document. Attributes are kept in document
// order.
type Mapping struct {
	Attributes []KeyAttribute
}

func (m *Mapping) UnmarshalYAML(unmarshal func(interface{}) error) error {
	slice := yaml.MapSlice{}
	if err := unmarshal(&slice); err != nil {
		return err
	}
	for i, item := range slice {
		k, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("mapping key '%v' not a string", item.Key)
		}
		if item.Value == nil {
			m.Attributes = append(m.Attributes, KeyAttribute{Key: k, Order: i})
			continue
		}
		fields, ok := item.Value.(yaml.MapSlice)
		if !ok {
			return fmt.Errorf("mapping of '%s' not a map", k)
		}
		attr := KeyAttribute{Key: k, Order: i}
		for _, f := range fields {
			name, ok := f.Key.(string)
			if !ok {
				return fmt.Errorf("field '%v' of '%s' not a string", f.Key, k)
			}
			if f.Value == nil {
				continue
			}
			var v string
			switch val := f.Value.(type) {
			case string:
				v = val
			case int, int64, float64, bool:
				v = fmt.Sprint(val)
			default:
				return fmt.Errorf("value of '%s.%s' not a scalar", k, name)
			}
			switch name {
			case "entity":
				attr.Entity = v
			case "predicate":
				attr.Predicate = v
			case "type":
				attr.Type = v
			case "language":
				attr.Language = v
			case "instanceOf":
				attr.InstanceOf = v
			case "partOf":
				attr.PartOf = v
			case "generateWith":
				attr.GenerateWith = v
			case "datatype":
				attr.Datatype = v
			default:
				return fmt.Errorf("unknown field '%s' for '%s'", name, k)
			}
		}
		m.Attributes = append(m.Attributes, attr)
	}
	return nil
}

// Parse decodes a mapping document.
func Parse(data []byte) (*Mapping, error) {
	m := &Mapping{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
