// Package graft splices components into the record network of an
// EnergyPlus document.
//
// Components are connected by shared node names, and branches and lists
// enumerate them positionally. A graft therefore touches several records at
// once: the branch quadruple, the downstream neighbour's inlet field (whose
// name differs per component type, see [Contracts]), the new component's
// own records and any parallel lists. Each operation here plans all lookups
// first and then applies its edits inside one [idf.Store.Update], so a
// failing graft leaves the store as it was.
package graft
