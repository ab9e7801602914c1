package graft

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// ContractKind tags how a component type exposes its inlet node.
type ContractKind int

const (
	// InletField: the component names its inlet in one field.
	InletField ContractKind = iota + 1

	// CoilSystemInlet: a coil system with its own inlet field that also
	// wraps a coil whose inlet must match.
	CoilSystemInlet

	// CoilInlet: a coil system without an inlet field of its own; only the
	// wrapped coil's inlet is rewired.
	CoilInlet
)

func (k ContractKind) String() string {
	switch k {
	case InletField:
		return "inlet-field"
	case CoilSystemInlet:
		return "coil-system-inlet"
	case CoilInlet:
		return "coil-inlet"
	default:
		return fmt.Sprintf("ContractKind(%d)", int(k))
	}
}

// Contract says which fields hold a component's inlet node.
type Contract struct {
	Kind ContractKind

	// Field is the component's own inlet field (InletField, CoilSystemInlet).
	Field string

	// CoilTypeField and CoilNameField locate the wrapped coil
	// (CoilSystemInlet, CoilInlet); CoilField is the coil's inlet field.
	CoilTypeField string
	CoilNameField string
	CoilField     string
}

// Contracts maps component types to their inlet contract. Types missing
// here fail with [ErrUnresolvedComponentType]; there is no fallback field.
var Contracts = map[string]Contract{
	"Pipe:Adiabatic":              {Kind: InletField, Field: "Inlet Node Name"},
	"Pipe:Adiabatic:Steam":        {Kind: InletField, Field: "Inlet Node Name"},
	"Pipe:Indoor":                 {Kind: InletField, Field: "Fluid Inlet Node Name"},
	"Pipe:Outdoor":                {Kind: InletField, Field: "Fluid Inlet Node Name"},
	"Pump:VariableSpeed":          {Kind: InletField, Field: "Inlet Node Name"},
	"Pump:ConstantSpeed":          {Kind: InletField, Field: "Inlet Node Name"},
	"HeaderedPumps:ConstantSpeed": {Kind: InletField, Field: "Inlet Node Name"},
	"HeaderedPumps:VariableSpeed": {Kind: InletField, Field: "Inlet Node Name"},

	"Coil:Heating:Electric":       {Kind: InletField, Field: "Air Inlet Node Name"},
	"Coil:Heating:Fuel":           {Kind: InletField, Field: "Air Inlet Node Name"},
	"Coil:Heating:Water":          {Kind: InletField, Field: "Air Inlet Node Name"},
	"Coil:Cooling:Water":          {Kind: InletField, Field: "Air Inlet Node Name"},
	"Coil:Cooling:DX:SingleSpeed": {Kind: InletField, Field: "Air Inlet Node Name"},
	"Coil:Heating:DX:SingleSpeed": {Kind: InletField, Field: "Air Inlet Node Name"},
	"Fan:ConstantVolume":          {Kind: InletField, Field: "Air Inlet Node Name"},
	"Fan:OnOff":                   {Kind: InletField, Field: "Air Inlet Node Name"},
	"Fan:VariableVolume":          {Kind: InletField, Field: "Air Inlet Node Name"},
	"Fan:SystemModel":             {Kind: InletField, Field: "Air Inlet Node Name"},
	"Humidifier:Steam:Electric":   {Kind: InletField, Field: "Air Inlet Node Name"},

	"HeatExchanger:AirToAir:SensibleAndLatent": {Kind: InletField, Field: "Supply Air Inlet Node Name"},
	"HeatExchanger:Desiccant:BalancedFlow":     {Kind: InletField, Field: "Process Air Inlet Node Name"},
	"Dehumidifier:Desiccant:NoFans":            {Kind: InletField, Field: "Process Air Inlet Node Name"},

	"CoilSystem:Cooling:DX": {
		Kind:          CoilSystemInlet,
		Field:         "DX Cooling Coil System Inlet Node Name",
		CoilTypeField: "Cooling Coil Object Type",
		CoilNameField: "Cooling Coil Name",
		CoilField:     "Air Inlet Node Name",
	},
	"CoilSystem:Heating:DX": {
		Kind:          CoilInlet,
		CoilTypeField: "Heating Coil Object Type",
		CoilNameField: "Heating Coil Name",
		CoilField:     "Air Inlet Node Name",
	},
}

// LookupContract returns the contract of a component type
// (case-insensitive).
func LookupContract(componentType string) (Contract, bool) {
	if c, ok := Contracts[componentType]; ok {
		return c, true
	}

	for typ, c := range Contracts {
		if strings.EqualFold(typ, componentType) {
			return c, true
		}
	}

	return Contract{}, false
}

// fieldEdit is one planned Set.
type fieldEdit struct {
	rec   *idf.Record
	index int
	value string
}

func (e fieldEdit) apply() error {
	return e.rec.Set(e.index, e.value)
}

// inletEdits plans the edits that point the component (componentType, name)
// at a new inlet node. Nothing is mutated.
func inletEdits(store *idf.Store, componentType, name, node string) ([]fieldEdit, error) {
	contract, ok := LookupContract(componentType)
	if !ok {
		return nil, &idf.Error{Type: componentType, Key: name, Err: ErrUnresolvedComponentType}
	}

	comp, err := store.FindByKey(componentType, name)
	if err != nil {
		return nil, err
	}

	var edits []fieldEdit

	if contract.Kind == InletField || contract.Kind == CoilSystemInlet {
		e, err := planSet(comp, contract.Field, node)
		if err != nil {
			return nil, err
		}

		edits = append(edits, e)
	}

	if contract.Kind == CoilSystemInlet || contract.Kind == CoilInlet {
		coilType, err := comp.Get(contract.CoilTypeField)
		if err != nil {
			return nil, err
		}

		coilName, err := comp.Get(contract.CoilNameField)
		if err != nil {
			return nil, err
		}

		coil, err := store.FindByKey(coilType, coilName)
		if err != nil {
			return nil, err
		}

		e, err := planSet(coil, contract.CoilField, node)
		if err != nil {
			return nil, err
		}

		edits = append(edits, e)
	}

	if len(edits) == 0 {
		return nil, &idf.Error{Type: componentType, Key: name, Err: fmt.Errorf("%w: contract kind %v", ErrUnresolvedComponentType, contract.Kind)}
	}

	return edits, nil
}

// planSet resolves field on rec. Set needs an existing field, so a field
// past the end of the record is reported instead of padded.
func planSet(rec *idf.Record, field, value string) (fieldEdit, error) {
	i, err := rec.FieldIndex(field)
	if err != nil {
		return fieldEdit{}, err
	}

	if i >= rec.Len() {
		return fieldEdit{}, &idf.Error{Type: rec.Type(), Key: rec.Key(), Field: field, Err: idf.ErrFieldIndex}
	}

	return fieldEdit{rec: rec, index: i, value: value}, nil
}
