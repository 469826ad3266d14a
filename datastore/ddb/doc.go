/*
Package ddb provides a DynamoDB store handler.

Every record is one item in a single table:

	PK          key template expanded for the record, default "{type}"
	SK          key template expanded for the record, default "{key}"
	EntityType  model type name
	Data        JSON representation, secure fields included
	UpdatedAt   RFC 3339 time of the last save

Templates may use the {type} and {key} macros. The partition template cannot
use {key}, so all records of a type share a partition and List is a single
paginated query:

	storage-handlers:
	  - type: dynamodb
	    table: commissaire
	    region: us-east-1
	    pk_template: "CS#{type}"
	    models: ["Cluster*", "Network*"]

Connection settings left out of the configuration are read from AWS_DDB_TABLE,
AWS_REGION, AWS_ACCESS_KEY and AWS_SECRET_KEY. Without static keys the default
AWS credential chain is used.

Throttled queries are retried up to max_retries times with a linear backoff
of retry_backoff per attempt.
*/
package ddb
