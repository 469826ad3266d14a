/*
Package datastore defines the contract between the storage core and its backends.

A backend implementation provides a HandlerType, the static side that checks
configuration and activates handlers, and a StoreHandler, the live side that
performs the four primitive operations:

	type StoreHandler interface {
	    Save(ctx context.Context, m models.Model) (models.Model, error)
	    Get(ctx context.Context, m models.Model) (models.Model, error)
	    Delete(ctx context.Context, m models.Model) error
	    List(ctx context.Context, l models.ListModel) (models.ListModel, error)
	}

Handler types are made available to configuration through a Catalog, a map of
selector strings to handler types populated at startup:

	catalog := datastore.NewCatalog().
	    MustAdd("memory", memory.HandlerType{}).
	    MustAdd("dynamodb", ddb.HandlerType{})

Implementations:
  - memory: in-process map, the default store
  - ddb: AWS DynamoDB
  - sqlstore: SQL database through gorm
  - vault: HashiCorp Vault KV, intended for secret model types

Get and Delete report missing records as errors.NotFoundError so callers can
tell them apart from backend failures.
*/
package datastore
