// Package driver provides a gocql-backed implementation of the
// replicaset.ReplicaTable and replicaset.ReplicaClient interfaces.
//
// It models a wide-column row as a CQL table keyed by row key, column
// family and qualifier, clustered by timestamp descending:
//
//	CREATE TABLE IF NOT EXISTS <keyspace>.<table> (
//	    row_key   text,
//	    family    text,
//	    qualifier text,
//	    ts        bigint,
//	    value     blob,
//	    PRIMARY KEY ((row_key), family, qualifier, ts)
//	) WITH CLUSTERING ORDER BY (family ASC, qualifier ASC, ts DESC);
//
// This gives replicaset.Table's ApplyMutation/Get/Scan something
// concrete to drive in tests and examples, and exercises
// github.com/gocql/gocql the way helix's adapter/cql adapters exercise
// it for raw CQL sessions.
//
// # Usage
//
//	client, err := replicaset.NewClient(ctx, addrs, paths, driver.Dial,
//	    replicaset.WithDDLFailFast(true),
//	)
//	table, err := client.OpenTable(ctx, "users")
package driver
