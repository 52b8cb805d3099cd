package joining

import "strconv"

// aliasPrefixLength bounds the base of generated aliases
const aliasPrefixLength = 20

// AliasTable tracks the table names and aliases already used in a statement
type AliasTable struct {
	used     map[string]struct{}
	reserved map[string]string
}

// NewAliasTable creates a table with the given names already used
func NewAliasTable(names ...string) *AliasTable {
	a := &AliasTable{used: make(map[string]struct{}), reserved: make(map[string]string)}
	for _, n := range names {
		if n != "" {
			a.Add(n)
		}
	}
	return a
}

// Add marks a name as used
func (a *AliasTable) Add(name string) {
	a.used[name] = struct{}{}
}

// Contains reports whether a name is used
func (a *AliasTable) Contains(name string) bool {
	_, ok := a.used[name]
	return ok
}

// Assign returns the name to reference table by and registers it. An unused
// table name is returned as is with aliased=false. Otherwise the first free
// <prefix>_<n> is chosen, prefix being the name truncated to 20 characters.
func (a *AliasTable) Assign(table string) (alias string, aliased bool) {
	alias = CreateAlias(table, a.Contains)
	a.Add(alias)
	return alias, alias != table
}

// Reserve returns the alias registered under key, assigning one derived from
// name on first use. Side tables and chain links declared in several
// subqueries of a statement keep one alias that no other table reference uses.
func (a *AliasTable) Reserve(key, name string) string {
	if alias, ok := a.reserved[key]; ok {
		return alias
	}
	alias := CreateAlias(name, a.Contains)
	a.Add(alias)
	a.reserved[key] = alias
	return alias
}

// CreateAlias computes the alias for table without registering it
func CreateAlias(table string, used func(string) bool) string {
	alias := table
	prefix := table
	if len(prefix) > aliasPrefixLength {
		prefix = prefix[:aliasPrefixLength]
	}
	for index := 1; used(alias); index++ {
		alias = prefix + "_" + strconv.Itoa(index)
	}
	return alias
}
