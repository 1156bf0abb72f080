// Package factory provides a small generic registry used to instantiate
// pluggable modules (metrics sinks, timetable mirrors) from configuration.
// A module is described by a type string and a map of raw settings; its
// factory decodes the settings into a typed struct.
//
// Example usage:
//
//	reg := factory.NewRegistry[publisher.Mirror]()
//	reg.Register("mqtt", func(conf map[string]any) (publisher.Mirror, error) {
//	    var c mqtt.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return mqtt.NewMirror(c)
//	})
//	m, err := reg.Create(factory.ModuleConfig{Type: "mqtt", Conf: map[string]any{"broker": "tcp://localhost:1883"}})
package factory
