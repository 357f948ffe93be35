package props

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortOrder controls how the property table orders keys and groups.
type SortOrder int

const (
	SortDesc SortOrder = iota
	SortAsc
	SortNone
)

// SortOrders lists the orders in the sequence the UI cycles through them.
var SortOrders = []SortOrder{SortDesc, SortAsc, SortNone}

func (o SortOrder) String() string {
	switch o {
	case SortAsc:
		return "asc"
	case SortNone:
		return "none"
	default:
		return "desc"
	}
}

// Next returns the order that follows o in SortOrders.
func (o SortOrder) Next() SortOrder {
	for i, s := range SortOrders {
		if s == o {
			return SortOrders[(i+1)%len(SortOrders)]
		}
	}
	return SortDesc
}

// ParseSortOrder accepts "desc", "asc" or "none".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	case "none":
		return SortNone, nil
	}
	return SortDesc, fmt.Errorf("unknown sort order %q (want desc, asc or none)", s)
}

// EmptyMessage is shown instead of a table when a bag has no properties.
const EmptyMessage = "No properties available"

const superclassesKey = "superclasses"

// Item is a single property inside a group.
type Item struct {
	Key         string // Full property key, e.g. "geometry_x"
	DisplayName string // Name shown in the panel, e.g. "x"
	Value       Value
}

// Grouped is a bag split into standalone keys and underscore groups.
type Grouped struct {
	Standalone []Entry
	Groups     []Group
}

// Group is a set of properties sharing the prefix before the first
// underscore.
type Group struct {
	Name  string
	Items []Item
}

// Split groups the bag's keys. "geometry_x" lands in group "geometry" as
// "x"; keys without an underscore are standalone. "superclasses" becomes a
// group of inheritance levels. Source order is kept.
func Split(bag Bag) Grouped {
	var out Grouped
	groupIdx := make(map[string]int)
	add := func(name string, item Item) {
		i, ok := groupIdx[name]
		if !ok {
			i = len(out.Groups)
			groupIdx[name] = i
			out.Groups = append(out.Groups, Group{Name: name})
		}
		out.Groups[i].Items = append(out.Groups[i].Items, item)
	}

	for _, e := range bag.Entries() {
		if e.Key == superclassesKey && e.Value.Kind == String {
			for i, class := range strings.Split(e.Value.Text, " > ") {
				class = strings.TrimSpace(class)
				if class == "" {
					continue
				}
				n := strconv.Itoa(i)
				add(superclassesKey, Item{
					Key:         "level_" + n,
					DisplayName: "inheritance_" + n,
					Value:       StringValue(class),
				})
			}
			continue
		}
		name, sub, ok := strings.Cut(e.Key, "_")
		if !ok || name == "" {
			out.Standalone = append(out.Standalone, e)
			continue
		}
		add(name, Item{Key: e.Key, DisplayName: sub, Value: e.Value})
	}
	return out
}

// TableOptions controls Table output.
type TableOptions struct {
	Sort   SortOrder
	Search string // Case-insensitive panel search; empty keeps every row
}

// RowKind distinguishes table rows.
type RowKind int

const (
	RowProperty RowKind = iota
	RowGroupHeader
	RowGroupItem
)

// Row is one line of the property panel.
type Row struct {
	Kind  RowKind
	Group string // Group name for headers and items
	Key   string // Full property key; empty for headers
	Name  string // Display name
	Value Value
}

// Table is the property panel contents for one node.
type Table struct {
	Rows  []Row
	Total int // Properties in the bag before searching
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Message returns the fallback text for a table without rows, or "".
func (t Table) Message() string {
	switch {
	case t.Total == 0:
		return EmptyMessage
	case len(t.Rows) == 0:
		return "No properties match the search"
	}
	return ""
}

// BuildTable builds panel rows: standalone properties first, then each group as
// a header followed by its items.
func BuildTable(bag Bag, opts TableOptions) Table {
	t := Table{Total: bag.Len()}
	if bag.Empty() {
		return t
	}
	g := Split(bag)
	term := strings.ToLower(opts.Search)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), term) }

	standalone := append([]Entry(nil), g.Standalone...)
	sortBy(standalone, opts.Sort, func(e Entry) string { return e.Key })
	for _, e := range standalone {
		if term != "" && !contains(e.Key) && !contains(e.Value.Display()) {
			continue
		}
		t.Rows = append(t.Rows, Row{Kind: RowProperty, Key: e.Key, Name: e.Key, Value: e.Value})
	}

	groups := append([]Group(nil), g.Groups...)
	sortBy(groups, opts.Sort, func(g Group) string { return g.Name })
	for _, grp := range groups {
		items := append([]Item(nil), grp.Items...)
		sortBy(items, opts.Sort, func(it Item) string { return strings.TrimPrefix(it.Key, grp.Name+"_") })

		var rows []Row
		for _, it := range items {
			if term != "" && !contains(grp.Name) && !contains(it.DisplayName) && !contains(it.Value.Display()) {
				continue
			}
			rows = append(rows, Row{Kind: RowGroupItem, Group: grp.Name, Key: it.Key, Name: it.DisplayName, Value: it.Value})
		}
		if len(rows) == 0 {
			continue
		}
		t.Rows = append(t.Rows, Row{Kind: RowGroupHeader, Group: grp.Name, Name: grp.Name})
		t.Rows = append(t.Rows, rows...)
	}
	return t
}

func sortBy[T any](items []T, order SortOrder, key func(T) string) {
	switch order {
	case SortAsc:
		sort.SliceStable(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
	case SortDesc:
		sort.SliceStable(items, func(i, j int) bool { return key(items[i]) > key(items[j]) })
	}
}
