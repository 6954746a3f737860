package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/gocql/gocql"

	replicaset "github.com/arloliu/ha-table"
)

// Client implements replicaset.ReplicaClient against a single gocql
// session. A Client's "table" operations issue CQL DDL against the
// keyspace identified at construction; admin commands unsupported by
// CQL report an error rather than silently succeeding.
type Client struct {
	session  *gocql.Session
	keyspace string
	addr     string
}

var _ replicaset.ReplicaClient = (*Client)(nil)

// NewClient wraps session, scoped to keyspace, for addr (used only for
// logging/display).
func NewClient(session *gocql.Session, keyspace, addr string) *Client {
	return &Client{session: session, keyspace: keyspace, addr: addr}
}

// Dial is a replicaset.DialFunc backed by gocql: addr is a comma-
// separated list of contact points, path is the keyspace name.
func Dial(ctx context.Context, addr, path string) (replicaset.ReplicaClient, error) {
	hosts := strings.Split(addr, ",")
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = path

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("driver: dial %s/%s: %w", addr, path, err)
	}

	return NewClient(session, path, addr), nil
}

// GetName implements replicaset.ReplicaClient.
func (c *Client) GetName() string { return c.addr }

// CreateTable implements replicaset.ReplicaClient.
func (c *Client) CreateTable(ctx context.Context, desc *replicaset.TableDescriptor) error {
	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s.%s (row_key text, family text, qualifier text, ts bigint, value blob, PRIMARY KEY ((row_key), family, qualifier, ts)) WITH CLUSTERING ORDER BY (family ASC, qualifier ASC, ts DESC)",
		c.keyspace, desc.Name,
	)

	return c.session.Query(stmt).WithContext(ctx).Exec()
}

// UpdateTable implements replicaset.ReplicaClient, limited to adding the
// families named in desc as a comment (CQL has no per-family schema for
// a wide, sparse table modeled this way).
func (c *Client) UpdateTable(ctx context.Context, desc *replicaset.TableDescriptor) error {
	stmt := fmt.Sprintf("ALTER TABLE %s.%s WITH comment = ?", c.keyspace, desc.Name)

	return c.session.Query(stmt, strings.Join(desc.Families, ",")).WithContext(ctx).Exec()
}

// DeleteTable implements replicaset.ReplicaClient.
func (c *Client) DeleteTable(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", c.keyspace, name)

	return c.session.Query(stmt).WithContext(ctx).Exec()
}

// EnableTable implements replicaset.ReplicaClient; CQL tables have no
// enabled/disabled state, so this is a successful no-op once the table
// is confirmed to exist.
func (c *Client) EnableTable(ctx context.Context, name string) error {
	ok, err := c.tableExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return replicaset.ErrTableNotFound
	}

	return nil
}

// DisableTable implements replicaset.ReplicaClient; see EnableTable.
func (c *Client) DisableTable(ctx context.Context, name string) error {
	return c.EnableTable(ctx, name)
}

// CreateUser implements replicaset.ReplicaClient using CQL role management.
func (c *Client) CreateUser(ctx context.Context, user, pwd string) error {
	stmt := fmt.Sprintf("CREATE ROLE IF NOT EXISTS %s WITH PASSWORD = ? AND LOGIN = true", user)

	return c.session.Query(stmt, pwd).WithContext(ctx).Exec()
}

// DeleteUser implements replicaset.ReplicaClient.
func (c *Client) DeleteUser(ctx context.Context, user string) error {
	stmt := fmt.Sprintf("DROP ROLE IF EXISTS %s", user)

	return c.session.Query(stmt).WithContext(ctx).Exec()
}

// ChangePwd implements replicaset.ReplicaClient.
func (c *Client) ChangePwd(ctx context.Context, user, pwd string) error {
	stmt := fmt.Sprintf("ALTER ROLE %s WITH PASSWORD = ?", user)

	return c.session.Query(stmt, pwd).WithContext(ctx).Exec()
}

// AddUserToGroup implements replicaset.ReplicaClient via role grants.
func (c *Client) AddUserToGroup(ctx context.Context, user, group string) error {
	stmt := fmt.Sprintf("GRANT %s TO %s", group, user)

	return c.session.Query(stmt).WithContext(ctx).Exec()
}

// DeleteUserFromGroup implements replicaset.ReplicaClient via role revokes.
func (c *Client) DeleteUserFromGroup(ctx context.Context, user, group string) error {
	stmt := fmt.Sprintf("REVOKE %s FROM %s", group, user)

	return c.session.Query(stmt).WithContext(ctx).Exec()
}

// DelSnapshot, Rollback and Rename have no CQL equivalent; gocql cannot
// drive them, so they report ErrNotImplemented rather than silently
// doing nothing.
func (c *Client) DelSnapshot(ctx context.Context, table, snapshot string) error {
	return replicaset.ErrNotImplemented
}

// Rollback reports ErrNotImplemented; see DelSnapshot.
func (c *Client) Rollback(ctx context.Context, table, snapshot string) error {
	return replicaset.ErrNotImplemented
}

// Rename reports ErrNotImplemented: CQL has no native table rename.
func (c *Client) Rename(ctx context.Context, oldName, newName string) error {
	return replicaset.ErrNotImplemented
}

// ShowUser implements replicaset.ReplicaClient.
func (c *Client) ShowUser(ctx context.Context, user string) (*replicaset.UserInfo, error) {
	iter := c.session.Query("LIST ROLES OF ?", user).WithContext(ctx).Iter()
	defer iter.Close()

	var groups []string
	var role string
	for iter.Scan(&role) {
		groups = append(groups, role)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}

	return &replicaset.UserInfo{Name: user, Groups: groups}, nil
}

// List implements replicaset.ReplicaClient.
func (c *Client) List(ctx context.Context) ([]string, error) {
	stmt := "SELECT table_name FROM system_schema.tables WHERE keyspace_name = ?"
	iter := c.session.Query(stmt, c.keyspace).WithContext(ctx).Iter()
	defer iter.Close()

	var names []string
	var name string
	for iter.Scan(&name) {
		names = append(names, name)
	}

	return names, iter.Close()
}

func (c *Client) tableExists(ctx context.Context, name string) (bool, error) {
	stmt := "SELECT table_name FROM system_schema.tables WHERE keyspace_name = ? AND table_name = ?"
	var got string
	err := c.session.Query(stmt, c.keyspace, name).WithContext(ctx).Scan(&got)
	if err == gocql.ErrNotFound {
		return false, nil
	}

	return err == nil, err
}

// IsTableExist implements replicaset.ReplicaClient.
func (c *Client) IsTableExist(ctx context.Context, name string) (bool, error) {
	return c.tableExists(ctx, name)
}

// IsTableEnabled implements replicaset.ReplicaClient; a CQL table is
// always "enabled" once it exists.
func (c *Client) IsTableEnabled(ctx context.Context, name string) (bool, error) {
	return c.tableExists(ctx, name)
}

// IsTableEmpty implements replicaset.ReplicaClient.
func (c *Client) IsTableEmpty(ctx context.Context, name string) (bool, error) {
	stmt := fmt.Sprintf("SELECT row_key FROM %s.%s LIMIT 1", c.keyspace, name)
	var rowKey string
	err := c.session.Query(stmt).WithContext(ctx).Scan(&rowKey)
	if err == gocql.ErrNotFound {
		return true, nil
	}

	return false, err
}

// GetSnapshot reports ErrNotImplemented: CQL has no native snapshot
// listing accessible over a client session (it is a nodetool operation).
func (c *Client) GetSnapshot(ctx context.Context, table string) ([]string, error) {
	return nil, replicaset.ErrNotImplemented
}

// GetTableDescriptor implements replicaset.ReplicaClient.
func (c *Client) GetTableDescriptor(ctx context.Context, name string) (*replicaset.TableDescriptor, error) {
	ok, err := c.tableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, replicaset.ErrTableNotFound
	}

	stmt := "SELECT column_name FROM system_schema.columns WHERE keyspace_name = ? AND table_name = ?"
	iter := c.session.Query(stmt, c.keyspace, name).WithContext(ctx).Iter()
	defer iter.Close()

	var families []string
	var col string
	for iter.Scan(&col) {
		families = append(families, col)
	}

	return &replicaset.TableDescriptor{Name: name, Families: families}, iter.Close()
}

// GetTabletLocation reports ErrNotImplemented: token-to-host ownership
// is exposed via gocql's internal metadata, not a stable client API.
func (c *Client) GetTabletLocation(ctx context.Context, name string) ([]replicaset.TabletLocation, error) {
	return nil, replicaset.ErrNotImplemented
}

// CmdCtrl implements replicaset.ReplicaClient by executing cmd as a raw
// CQL statement against the keyspace; args are bound as query
// parameters. This is the closest CQL equivalent to an administrative
// command passthrough.
func (c *Client) CmdCtrl(ctx context.Context, cmd string, args ...string) (string, error) {
	bound := make([]any, len(args))
	for i, a := range args {
		bound[i] = a
	}

	if err := c.session.Query(cmd, bound...).WithContext(ctx).Exec(); err != nil {
		return "", err
	}

	return "OK", nil
}

// OpenTable implements replicaset.ReplicaClient.
func (c *Client) OpenTable(ctx context.Context, name string) (replicaset.ReplicaTable, error) {
	ok, err := c.tableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("driver: table %s.%s does not exist", c.keyspace, name)
	}

	return NewTable(c.session, c.keyspace, name), nil
}
