package style

// Cache resolves roles against a Table for the duration of one render.
// It is not safe for concurrent use; each render builds its own.
type Cache struct {
	table    Table
	resolved map[Role]Descriptor
}

// NewCache constructs a Cache over table.
func NewCache(table Table) *Cache {
	return &Cache{table: table, resolved: make(map[Role]Descriptor, len(Roles))}
}

// Resolve returns the descriptor for role. Unknown roles resolve to the body style.
func (c *Cache) Resolve(role Role) Descriptor {
	if d, ok := c.resolved[role]; ok {
		return d
	}
	d, ok := c.table[role]
	if !ok {
		d = c.table[RoleBody]
	}
	c.resolved[role] = d
	return d
}

// Title, Header, Body, Caption and Brand are shorthands for Resolve.
func (c *Cache) Title() Descriptor   { return c.Resolve(RoleTitle) }
func (c *Cache) Header() Descriptor  { return c.Resolve(RoleHeader) }
func (c *Cache) Body() Descriptor    { return c.Resolve(RoleBody) }
func (c *Cache) Caption() Descriptor { return c.Resolve(RoleCaption) }
func (c *Cache) Brand() Descriptor   { return c.Resolve(RoleBrand) }
