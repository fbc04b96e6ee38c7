// Package factory instantiates pluggable modules (metrics sinks, plan stores)
// from configuration. A module is described by a type string and a map of
// raw settings; the registered factory decodes the settings into its own
// typed struct.
//
//	reg := factory.NewRegistry[store.PlanStore]()
//	_ = reg.Register("jsonl", func(conf map[string]any) (store.PlanStore, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return store.NewJSONLStore(c.Path)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "plans.jsonl"}})
package factory
