package hooks

import "sort"

// A Record is the metadata kept for one AsyncID.
type Record struct {
	ID       AsyncID
	Type     ResourceType
	ParentID AsyncID
	Alive    bool
}

// records maps every assigned AsyncID to its metadata. Entries are retained
// after destroy so that parent links of dead resources stay resolvable for
// tools that stitch call-chain trees.
var records = map[AsyncID]*Record{
	RootID: {ID: RootID, Type: TypeRoot, ParentID: InvalidID, Alive: true},
}

// Lookup returns the metadata recorded for id. The second return value is
// false if id was never assigned.
func Lookup(id AsyncID) (Record, bool) {
	r, ok := records[id]
	if !ok {
		return Record{}, false
	}

	return *r, true
}

// LiveResources returns the records of all resources that have been
// initialized but not yet destroyed, sorted by ID.
func LiveResources() []Record {
	rs := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Alive {
			rs = append(rs, *r)
		}
	}

	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })

	return rs
}
