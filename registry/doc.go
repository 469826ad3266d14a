/*
Package registry maps model type names to model type descriptors.

The registry is how the storage service turns untyped wire data back into
typed records:

	reg := registry.NewDefault()
	hostType, err := reg.Resolve("Host")
	host, err := hostType.Build(map[string]any{"address": "10.0.0.1"})

Match resolves the model name patterns used in store handler configuration.
Patterns are glob-style and case sensitive. Wildcard patterns skip secret
model types so credentials never land in a general purpose store by accident:

	reg.Match("*")         // every non-secret type
	reg.Match("Host*")     // Host, Hosts
	reg.Match("HostCreds") // HostCreds, named explicitly

A registry is an ordinary value owned by its service; there is no package
level state.
*/
package registry
