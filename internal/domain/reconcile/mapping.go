// Package reconcile applies externally aggregated monthly usage to the
// warehouse stock ledger. Syncs arrive repeatedly for the same period, so
// every write is delta-based against the last recorded total.
package reconcile

// FieldMapping binds one hardware column of the external report to a
// warehouse stock item name.
type FieldMapping struct {
	Field string
	Item  string
}

// FieldMappings is the static table of report columns consumed by the sync.
// The external sheet's column set is fixed; unknown columns are ignored.
var FieldMappings = []FieldMapping{
	{Field: "drop_wire", Item: "Drop Wire Cable"},
	{Field: "c_hook", Item: "C Hook"},
	{Field: "l_hook", Item: "L Hook"},
	{Field: "retainers", Item: "Retainer"},
	{Field: "nut_and_bolt", Item: "Nut and Bolt"},
	{Field: "u_clip", Item: "U Clip"},
	{Field: "c_clip", Item: "C Clip"},
	{Field: "c_tie", Item: "Cable Tie"},
	{Field: "conduit", Item: "Conduit"},
	{Field: "flexible", Item: "Flexible Conduit"},
	{Field: "tag_tie", Item: "Tag Tie"},
	{Field: "fac", Item: "FAC Connector"},
	{Field: "internal_wire", Item: "Internal Wire"},
	{Field: "casing", Item: "Casing"},
	{Field: "pole", Item: "Pole"},
	{Field: "pole_67", Item: "Pole 6.7m"},
	{Field: "top_bolt", Item: "Top Bolt"},
	{Field: "f_one", Item: "F1 Connector"},
	{Field: "g_nail", Item: "G Nail"},
	{Field: "int_s", Item: "Internal Socket"},
	{Field: "s_rosette", Item: "Fiber Rosette"},
	{Field: "dw_rj", Item: "Drop Wire RJ"},
	{Field: "screw_nail", Item: "Screw Nail"},
	{Field: "concrete_nail", Item: "Concrete Nail"},
	{Field: "roll_plug", Item: "Roll Plug"},
}

// ItemForField resolves a report column to an item name.
func ItemForField(field string) (string, bool) {
	for _, m := range FieldMappings {
		if m.Field == field {
			return m.Item, true
		}
	}
	return "", false
}
