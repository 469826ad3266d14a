/*
Package models defines the commissaire record types and their descriptors.

Every record implements Model; collection records (Hosts, Clusters, ...) also
implement ListModel and serve as the query for list operations. A Type
descriptor builds records from untyped field mappings:

	t := &models.Type{Name: "Host", Required: []string{"address"}, New: func() models.Model { return models.NewHost() }}
	host, err := t.Build(map[string]any{"address": "10.0.0.1"})
	// host.(*models.Host).RemoteUser == "root"

Build reports structural problems (missing required fields, unknown fields,
mistyped values) as errors.MalformedError; Validate reports field constraint
violations as errors.ValidationError.

HostCreds is a secret type. Fields listed by SecureFields are dropped from
ToMap output unless secure output is requested.
*/
package models
