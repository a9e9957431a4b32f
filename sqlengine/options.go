package sqlengine

import (
	"context"

	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/extension"
	"github.com/forbearing/probing/plugin"
)

// InformationSchemaPlugin builds the information_schema.df_settings
// table plugin (§4.5): it enumerates every registered extension's
// options, each row carrying its namespaced key, so a SQL client can
// discover configurable knobs the way it discovers table schemas.
func InformationSchemaPlugin(registry *extension.Registry) plugin.Plugin {
	return plugin.NewTablePlugin("information_schema", "df_settings", func() (plugin.Table, error) {
		return &settingsTable{registry: registry}, nil
	})
}

type settingsTable struct {
	registry *extension.Registry
}

func (t *settingsTable) Schema() []plugin.Field {
	return []plugin.Field{
		{Name: "name", Kind: ele.SeqKindText},
		{Name: "setting", Kind: ele.SeqKindText},
		{Name: "description", Kind: ele.SeqKindText},
	}
}

func (t *settingsTable) Scan(ctx context.Context) (*ele.DataFrame, error) {
	opts := t.registry.Options()
	names := make([]string, len(opts))
	settings := make([]string, len(opts))
	descriptions := make([]string, len(opts))
	for i, o := range opts {
		names[i] = o.Namespace + "." + o.Option.Key
		if v, ok := o.Option.Value.Value(); ok {
			settings[i] = v.String()
		}
		descriptions[i] = o.Option.Help
	}
	return ele.NewDataFrame(
		[]string{"name", "setting", "description"},
		[]ele.Seq{ele.NewSeqText(names), ele.NewSeqText(settings), ele.NewSeqText(descriptions)},
	)
}
