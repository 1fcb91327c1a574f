package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Velocidex/ordereddict"
	"gopkg.in/yaml.v3"
)

// field is one named value in command output; nested values are fields or []fields
type field struct {
	key   string
	value any
}

type fields []field

// dict converts f into an ordered dictionary so JSON keeps the on-disk field order
func (f fields) dict() *ordereddict.Dict {
	d := ordereddict.NewDict()
	for _, x := range f {
		switch v := x.value.(type) {
		case fields:
			d.Set(x.key, v.dict())
		case []fields:
			list := make([]*ordereddict.Dict, 0, len(v))
			for _, item := range v {
				list = append(list, item.dict())
			}
			d.Set(x.key, list)
		default:
			d.Set(x.key, v)
		}
	}
	return d
}

// writeFields renders f as a key/value table, JSON or YAML
func writeFields(w io.Writer, format string, f fields) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(f.dict())
	case "yaml":
		return writeYAML(w, f)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "FIELD\tVALUE\n")
		fmt.Fprintf(tw, "-----\t-----\n")
		writeRows(tw, "", f)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeRows(w io.Writer, prefix string, f fields) {
	for _, x := range f {
		key := prefix + x.key
		switch v := x.value.(type) {
		case fields:
			writeRows(w, key+".", v)
		case []fields:
			for i, item := range v {
				writeRows(w, fmt.Sprintf("%s[%d].", key, i), item)
			}
		default:
			fmt.Fprintf(w, "%s\t%v\n", key, v)
		}
	}
}

// writeYAML goes through JSON so the ordered keys survive, then switches the
// document to block style
func writeYAML(w io.Writer, f fields) error {
	data, err := json.Marshal(f.dict())
	if err != nil {
		return err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	blockStyle(&node)

	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(&node)
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}
