package replicaset

import (
	"context"
	"fmt"
)

// DialFunc constructs a single replica's control-plane client from its
// discovery address and logical path. adapter/driver provides a gocql-
// backed implementation. NewClientFromReplicas skips dialing entirely.
type DialFunc func(ctx context.Context, addr, path string) (ReplicaClient, error)

// Client is the ReplicaSet Client façade: an ordered, immutable list of
// per-replica control-plane clients. DDL and admin operations fan out
// through it; OpenTable assembles a Table from the replicas that opened
// the named table successfully.
type Client struct {
	replicas []ReplicaClient
	cfg      *Config
}

// NewClient pairs two ordered configuration lists of equal length
// (discovery addresses and logical paths) and constructs one per-replica
// client per pair via dial, in order. Order is significant: replica 0
// is the primary target for async writes and the default-first target
// for reads.
func NewClient(ctx context.Context, addrs, paths []string, dial DialFunc, opts ...Option) (*Client, error) {
	if len(addrs) != len(paths) {
		return nil, fmt.Errorf("replicaset: addrs and paths must have equal length, got %d and %d", len(addrs), len(paths))
	}
	if len(addrs) == 0 {
		return nil, ErrNoReplicas
	}
	if dial == nil {
		return nil, fmt.Errorf("replicaset: dial function required")
	}

	cfg := newConfig(opts...)
	propagateReplicaNames(cfg)

	replicas := make([]ReplicaClient, len(addrs))
	for i := range addrs {
		rc, err := dial(ctx, addrs[i], paths[i])
		if err != nil {
			return nil, fmt.Errorf("replicaset: dial replica %d (%s): %w", i, addrs[i], err)
		}
		replicas[i] = rc
	}

	return &Client{replicas: replicas, cfg: cfg}, nil
}

// NewClientFromReplicas builds a Client directly from already-constructed
// per-replica clients, skipping the dial step. Useful in tests and when
// the caller has its own discovery mechanism.
func NewClientFromReplicas(replicas []ReplicaClient, opts ...Option) (*Client, error) {
	if len(replicas) == 0 {
		return nil, ErrNoReplicas
	}

	cfg := newConfig(opts...)
	propagateReplicaNames(cfg)

	return &Client{replicas: replicas, cfg: cfg}, nil
}

func (c *Client) logFailure(op string, replica ReplicaIndex, err error) {
	c.cfg.Logger.Warn("replica op failed", "op", op, "replica", c.cfg.name(replica), "err", err)
}

// fanOutDDL applies fn to every replica under the configured DDL
// policy: fail-fast aborts at the first per-replica failure; otherwise
// every replica is attempted and success requires only one OK.
func (c *Client) fanOutDDL(ctx context.Context, op string, fn func(context.Context, ReplicaClient) error) error {
	failures := 0
	var last error

	for i, replica := range c.replicas {
		err := fn(ctx, replica)
		if err == nil {
			continue
		}

		failures++
		last = err
		c.logFailure(op, ReplicaIndex(i), err)
		c.cfg.Metrics.IncWriteError(ReplicaIndex(i))

		if c.cfg.DDLFailFast {
			c.cfg.Logger.Error("ddl fan-out aborted", "op", op, "replica", c.cfg.name(ReplicaIndex(i)), "err", err)
			c.cfg.Metrics.IncDDLFailFastAbort(ReplicaIndex(i))

			return &ReplicaError{Replica: ReplicaIndex(i), Operation: op, Cause: err}
		}
	}

	if failures < len(c.replicas) {
		c.cfg.Metrics.IncFanoutSuccess()

		return nil
	}

	c.cfg.Metrics.IncFanoutFailure()

	return &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: op, Cause: last}
}

// CreateTable fans out table creation per the DDL policy.
func (c *Client) CreateTable(ctx context.Context, desc *TableDescriptor) error {
	return c.fanOutDDL(ctx, "CreateTable", func(ctx context.Context, r ReplicaClient) error { return r.CreateTable(ctx, desc) })
}

// UpdateTable fans out a schema update per the DDL policy.
func (c *Client) UpdateTable(ctx context.Context, desc *TableDescriptor) error {
	return c.fanOutDDL(ctx, "UpdateTable", func(ctx context.Context, r ReplicaClient) error { return r.UpdateTable(ctx, desc) })
}

// DeleteTable fans out table deletion per the DDL policy.
func (c *Client) DeleteTable(ctx context.Context, name string) error {
	return c.fanOutDDL(ctx, "DeleteTable", func(ctx context.Context, r ReplicaClient) error { return r.DeleteTable(ctx, name) })
}

// EnableTable fans out table enablement per the DDL policy.
func (c *Client) EnableTable(ctx context.Context, name string) error {
	return c.fanOutDDL(ctx, "EnableTable", func(ctx context.Context, r ReplicaClient) error { return r.EnableTable(ctx, name) })
}

// DisableTable fans out table disablement per the DDL policy.
func (c *Client) DisableTable(ctx context.Context, name string) error {
	return c.fanOutDDL(ctx, "DisableTable", func(ctx context.Context, r ReplicaClient) error { return r.DisableTable(ctx, name) })
}

// CreateUser fans out user creation per the DDL policy.
func (c *Client) CreateUser(ctx context.Context, user, pwd string) error {
	return c.fanOutDDL(ctx, "CreateUser", func(ctx context.Context, r ReplicaClient) error { return r.CreateUser(ctx, user, pwd) })
}

// DeleteUser fans out user deletion per the DDL policy.
func (c *Client) DeleteUser(ctx context.Context, user string) error {
	return c.fanOutDDL(ctx, "DeleteUser", func(ctx context.Context, r ReplicaClient) error { return r.DeleteUser(ctx, user) })
}

// ChangePwd fans out a password change per the DDL policy.
func (c *Client) ChangePwd(ctx context.Context, user, pwd string) error {
	return c.fanOutDDL(ctx, "ChangePwd", func(ctx context.Context, r ReplicaClient) error { return r.ChangePwd(ctx, user, pwd) })
}

// AddUserToGroup fans out a group membership add per the DDL policy.
func (c *Client) AddUserToGroup(ctx context.Context, user, group string) error {
	return c.fanOutDDL(ctx, "AddUserToGroup", func(ctx context.Context, r ReplicaClient) error { return r.AddUserToGroup(ctx, user, group) })
}

// DeleteUserFromGroup fans out a group membership removal per the DDL policy.
func (c *Client) DeleteUserFromGroup(ctx context.Context, user, group string) error {
	return c.fanOutDDL(ctx, "DeleteUserFromGroup", func(ctx context.Context, r ReplicaClient) error {
		return r.DeleteUserFromGroup(ctx, user, group)
	})
}

// DelSnapshot fans out snapshot deletion per the DDL policy.
func (c *Client) DelSnapshot(ctx context.Context, table, snapshot string) error {
	return c.fanOutDDL(ctx, "DelSnapshot", func(ctx context.Context, r ReplicaClient) error { return r.DelSnapshot(ctx, table, snapshot) })
}

// Rollback fans out a snapshot rollback per the DDL policy.
func (c *Client) Rollback(ctx context.Context, table, snapshot string) error {
	return c.fanOutDDL(ctx, "Rollback", func(ctx context.Context, r ReplicaClient) error { return r.Rollback(ctx, table, snapshot) })
}

// Rename fans out a table rename per the DDL policy.
func (c *Client) Rename(ctx context.Context, oldName, newName string) error {
	return c.fanOutDDL(ctx, "Rename", func(ctx context.Context, r ReplicaClient) error { return r.Rename(ctx, oldName, newName) })
}

// ShowUser returns the first replica's successful response.
func (c *Client) ShowUser(ctx context.Context, user string) (*UserInfo, error) {
	var last error
	for i, replica := range c.replicas {
		info, err := replica.ShowUser(ctx, user)
		if err == nil {
			c.cfg.Metrics.IncFanoutSuccess()

			return info, nil
		}
		last = err
		c.logFailure("ShowUser", ReplicaIndex(i), err)
	}
	c.cfg.Metrics.IncFanoutFailure()

	return nil, &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: "ShowUser", Cause: last}
}

// List returns the first replica's successful table list.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var last error
	for i, replica := range c.replicas {
		names, err := replica.List(ctx)
		if err == nil {
			c.cfg.Metrics.IncFanoutSuccess()

			return names, nil
		}
		last = err
		c.logFailure("List", ReplicaIndex(i), err)
	}
	c.cfg.Metrics.IncFanoutFailure()

	return nil, &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: "List", Cause: last}
}

func (c *Client) firstSuccessBool(ctx context.Context, op string, fn func(context.Context, ReplicaClient) (bool, error)) (bool, error) {
	var last error
	for i, replica := range c.replicas {
		v, err := fn(ctx, replica)
		if err == nil {
			c.cfg.Metrics.IncFanoutSuccess()

			return v, nil
		}
		last = err
		c.logFailure(op, ReplicaIndex(i), err)
	}
	c.cfg.Metrics.IncFanoutFailure()

	return false, &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: op, Cause: last}
}

// IsTableExist returns the first replica's successful existence check.
func (c *Client) IsTableExist(ctx context.Context, name string) (bool, error) {
	return c.firstSuccessBool(ctx, "IsTableExist", func(ctx context.Context, r ReplicaClient) (bool, error) { return r.IsTableExist(ctx, name) })
}

// IsTableEnabled returns the first replica's successful enabled check.
func (c *Client) IsTableEnabled(ctx context.Context, name string) (bool, error) {
	return c.firstSuccessBool(ctx, "IsTableEnabled", func(ctx context.Context, r ReplicaClient) (bool, error) { return r.IsTableEnabled(ctx, name) })
}

// IsTableEmpty returns the first replica's successful emptiness check.
func (c *Client) IsTableEmpty(ctx context.Context, name string) (bool, error) {
	return c.firstSuccessBool(ctx, "IsTableEmpty", func(ctx context.Context, r ReplicaClient) (bool, error) { return r.IsTableEmpty(ctx, name) })
}

// GetSnapshot returns the first replica's successful snapshot list.
func (c *Client) GetSnapshot(ctx context.Context, table string) ([]string, error) {
	var last error
	for i, replica := range c.replicas {
		snaps, err := replica.GetSnapshot(ctx, table)
		if err == nil {
			c.cfg.Metrics.IncFanoutSuccess()

			return snaps, nil
		}
		last = err
		c.logFailure("GetSnapshot", ReplicaIndex(i), err)
	}
	c.cfg.Metrics.IncFanoutFailure()

	return nil, &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: "GetSnapshot", Cause: last}
}

// GetTableDescriptor returns the first replica's successful descriptor.
func (c *Client) GetTableDescriptor(ctx context.Context, name string) (*TableDescriptor, error) {
	var last error
	for i, replica := range c.replicas {
		desc, err := replica.GetTableDescriptor(ctx, name)
		if err == nil {
			c.cfg.Metrics.IncFanoutSuccess()

			return desc, nil
		}
		last = err
		c.logFailure("GetTableDescriptor", ReplicaIndex(i), err)
	}
	c.cfg.Metrics.IncFanoutFailure()

	return nil, &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: "GetTableDescriptor", Cause: last}
}

// GetTabletLocation returns the first replica's successful tablet map.
func (c *Client) GetTabletLocation(ctx context.Context, name string) ([]TabletLocation, error) {
	var last error
	for i, replica := range c.replicas {
		loc, err := replica.GetTabletLocation(ctx, name)
		if err == nil {
			c.cfg.Metrics.IncFanoutSuccess()

			return loc, nil
		}
		last = err
		c.logFailure("GetTabletLocation", ReplicaIndex(i), err)
	}
	c.cfg.Metrics.IncFanoutFailure()

	return nil, &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: "GetTabletLocation", Cause: last}
}

// CmdCtrl fans an administrative command out to every replica
// unconditionally; the returned string is the first successful
// replica's result.
func (c *Client) CmdCtrl(ctx context.Context, cmd string, args ...string) (string, error) {
	var result string
	var got bool
	failures := 0
	var last error

	for i, replica := range c.replicas {
		v, err := replica.CmdCtrl(ctx, cmd, args...)
		if err != nil {
			failures++
			last = err
			c.logFailure("CmdCtrl", ReplicaIndex(i), err)

			continue
		}

		if !got {
			result = v
			got = true
		}
	}

	if failures < len(c.replicas) {
		c.cfg.Metrics.IncFanoutSuccess()

		return result, nil
	}

	c.cfg.Metrics.IncFanoutFailure()

	return "", &ReplicaError{Replica: ReplicaIndex(len(c.replicas) - 1), Operation: "CmdCtrl", Cause: last}
}

// OpenTable attempts to open name on every replica and assembles a Table
// from the subset that opened successfully. It returns ErrAllReplicasFailed
// when every replica failed to open.
func (c *Client) OpenTable(ctx context.Context, name string) (*Table, error) {
	opened := make([]ReplicaTable, 0, len(c.replicas))

	for i, replica := range c.replicas {
		tbl, err := replica.OpenTable(ctx, name)
		if err != nil {
			c.logFailure("OpenTable", ReplicaIndex(i), err)

			continue
		}
		opened = append(opened, tbl)
	}

	if len(opened) == 0 {
		return nil, ErrAllReplicasFailed
	}

	return newTable(name, opened, c.cfg), nil
}
