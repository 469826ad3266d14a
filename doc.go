/*
Package commissaire provides the storage routing core of the commissaire services.

Typed records ("models") such as hosts, clusters and networks are stored by
pluggable store handlers. The core decides which handler owns which record,
validates records on the way in and out, and accepts single records or
batches.

Key Features:
  - Handler registry with unique names and exclusive model type ownership
  - Lazy, cached handler activation safe for concurrent first use
  - Per-host routing through the Host "source" field
  - All-or-nothing record construction for batches
  - Input validation on save, output validation on get
  - Semantic error kinds (see package errors)

Basic Usage:

	catalog := datastore.NewCatalog().
	    MustAdd("memory", memory.HandlerType{}).
	    MustAdd("vault", vault.HandlerType{})

	svc, err := commissaire.NewService(catalog, []any{
	    map[string]any{"type": "memory", "name": "primary"},
	    map[string]any{"type": "vault", "models": []any{"HostCreds"}},
	}, commissaire.WithLogger(logger))

	saved, err := svc.Save(ctx, "Host", map[string]any{"address": "10.0.0.1"})
	hosts, err := svc.List(ctx, "Hosts")

Service.Handle serves the same operations from Request values, for use by a
transport.
*/
package commissaire
