package idf

// BuiltinSchema returns the layouts of the record types the graft
// contracts and the common plant/air-loop patches touch. Layouts follow the
// EnergyPlus 9.x input data dictionary; load the matching .idd with
// [ParseIDD] when targeting another version.
func BuiltinSchema() *Schema {
	s := NewSchema(builtinObjects...)

	for _, typ := range builtinUnkeyed {
		if _, ok := s.Object(typ); !ok {
			s.Add(ObjectSchema{Type: typ, Unkeyed: true})
		}
	}

	return s
}

var builtinUnkeyed = []string{
	"Lead Input",
	"Simulation Data",
	"Version",
	"Timestep",
	"SimulationControl",
	"GlobalGeometryRules",
	"ShadowCalculation",
	"HeatBalanceAlgorithm",
	"SurfaceConvectionAlgorithm:Inside",
	"SurfaceConvectionAlgorithm:Outside",
	"ZoneAirHeatBalanceAlgorithm",
	"ConvergenceLimits",
	"Sizing:Parameters",
	"Site:GroundTemperature:BuildingSurface",
	"Site:GroundReflectance",
	"Output:Meter",
	"Output:Meter:MeterFileOnly",
	"Output:Meter:Cumulative",
	"Output:Table:SummaryReports",
	"OutputControl:Table:Style",
	"Output:VariableDictionary",
	"Output:SQLite",
	"Output:Diagnostics",
	"Output:Surfaces:Drawing",
	"Output:Surfaces:List",
	"Output:Constructions",
	"Output:EnergyManagementSystem",
}

var builtinObjects = []ObjectSchema{
	{
		Type: "Branch",
		Fields: []string{
			"Name", "Pressure Drop Curve Name",
			"Component 1 Object Type", "Component 1 Name",
			"Component 1 Inlet Node Name", "Component 1 Outlet Node Name",
		},
		ExtensibleStart: 2, ExtensibleSize: 4,
	},
	{
		Type:            "BranchList",
		Fields:          []string{"Name", "Branch 1 Name"},
		ExtensibleStart: 1, ExtensibleSize: 1,
	},
	{
		Type:            "Connector:Splitter",
		Fields:          []string{"Name", "Inlet Branch Name", "Outlet Branch 1 Name"},
		ExtensibleStart: 2, ExtensibleSize: 1,
	},
	{
		Type:            "Connector:Mixer",
		Fields:          []string{"Name", "Outlet Branch Name", "Inlet Branch 1 Name"},
		ExtensibleStart: 2, ExtensibleSize: 1,
	},
	{
		Type: "ConnectorList",
		Fields: []string{
			"Name", "Connector 1 Object Type", "Connector 1 Name",
			"Connector 2 Object Type", "Connector 2 Name",
		},
	},
	{
		Type:            "NodeList",
		Fields:          []string{"Name", "Node 1 Name"},
		ExtensibleStart: 1, ExtensibleSize: 1,
	},
	{
		Type:            "AirLoopHVAC:OutdoorAirSystem:EquipmentList",
		Fields:          []string{"Name", "Component 1 Object Type", "Component 1 Name"},
		ExtensibleStart: 1, ExtensibleSize: 2,
	},
	{
		Type: "AvailabilityManagerAssignmentList",
		Fields: []string{
			"Name", "Availability Manager 1 Object Type", "Availability Manager 1 Name",
		},
		ExtensibleStart: 1, ExtensibleSize: 2,
	},
	{
		Type: "PlantLoop",
		Fields: []string{
			"Name", "Fluid Type", "User Defined Fluid Type",
			"Plant Equipment Operation Scheme Name", "Loop Temperature Setpoint Node Name",
			"Maximum Loop Temperature", "Minimum Loop Temperature",
			"Maximum Loop Flow Rate", "Minimum Loop Flow Rate", "Plant Loop Volume",
			"Plant Side Inlet Node Name", "Plant Side Outlet Node Name",
			"Plant Side Branch List Name", "Plant Side Connector List Name",
			"Demand Side Inlet Node Name", "Demand Side Outlet Node Name",
			"Demand Side Branch List Name", "Demand Side Connector List Name",
			"Load Distribution Scheme", "Availability Manager List Name",
			"Plant Loop Demand Calculation Scheme", "Common Pipe Simulation",
			"Pressure Simulation Type", "Loop Circulation Time",
		},
	},
	{
		Type: "CondenserLoop",
		Fields: []string{
			"Name", "Fluid Type", "User Defined Fluid Type",
			"Condenser Equipment Operation Scheme Name",
			"Condenser Loop Temperature Setpoint Node Name",
			"Maximum Loop Temperature", "Minimum Loop Temperature",
			"Maximum Loop Flow Rate", "Minimum Loop Flow Rate", "Condenser Loop Volume",
			"Condenser Side Inlet Node Name", "Condenser Side Outlet Node Name",
			"Condenser Side Branch List Name", "Condenser Side Connector List Name",
			"Demand Side Inlet Node Name", "Demand Side Outlet Node Name",
			"Demand Side Branch List Name", "Demand Side Connector List Name",
			"Load Distribution Scheme", "Pressure Simulation Type", "Loop Circulation Time",
		},
	},
	{
		Type:   "Pipe:Adiabatic",
		Fields: []string{"Name", "Inlet Node Name", "Outlet Node Name"},
	},
	{
		Type: "Pipe:Indoor",
		Fields: []string{
			"Name", "Construction Name", "Fluid Inlet Node Name", "Fluid Outlet Node Name",
			"Environment Type", "Ambient Temperature Zone Name",
			"Ambient Temperature Schedule Name", "Ambient Air Velocity Schedule Name",
			"Pipe Inside Diameter", "Pipe Length",
		},
	},
	{
		Type: "Pipe:Outdoor",
		Fields: []string{
			"Name", "Construction Name", "Fluid Inlet Node Name", "Fluid Outlet Node Name",
			"Ambient Temperature Outdoor Air Node Name", "Pipe Inside Diameter", "Pipe Length",
		},
	},
	{
		Type: "Pump:VariableSpeed",
		Fields: []string{
			"Name", "Inlet Node Name", "Outlet Node Name", "Design Maximum Flow Rate",
			"Design Pump Head", "Design Power Consumption", "Motor Efficiency",
			"Fraction of Motor Inefficiencies to Fluid Stream",
			"Coefficient 1 of the Part Load Performance Curve",
			"Coefficient 2 of the Part Load Performance Curve",
			"Coefficient 3 of the Part Load Performance Curve",
			"Coefficient 4 of the Part Load Performance Curve",
			"Design Minimum Flow Rate", "Pump Control Type",
		},
	},
	{
		Type: "Pump:ConstantSpeed",
		Fields: []string{
			"Name", "Inlet Node Name", "Outlet Node Name", "Design Flow Rate",
			"Design Pump Head", "Design Power Consumption", "Motor Efficiency",
			"Fraction of Motor Inefficiencies to Fluid Stream", "Pump Control Type",
		},
	},
	{
		Type: "HeaderedPumps:ConstantSpeed",
		Fields: []string{
			"Name", "Inlet Node Name", "Outlet Node Name", "Total Design Flow Rate",
			"Number of Pumps in Bank", "Flow Sequencing Control Scheme",
			"Design Pump Head", "Design Power Consumption", "Motor Efficiency",
			"Fraction of Motor Inefficiencies to Fluid Stream", "Pump Control Type",
		},
	},
	{
		Type: "HeaderedPumps:VariableSpeed",
		Fields: []string{
			"Name", "Inlet Node Name", "Outlet Node Name", "Total Design Flow Rate",
			"Number of Pumps in Bank", "Flow Sequencing Control Scheme",
			"Design Pump Head", "Design Power Consumption", "Motor Efficiency",
			"Fraction of Motor Inefficiencies to Fluid Stream",
			"Coefficient 1 of the Part Load Performance Curve",
			"Coefficient 2 of the Part Load Performance Curve",
			"Coefficient 3 of the Part Load Performance Curve",
			"Coefficient 4 of the Part Load Performance Curve",
			"Minimum Flow Rate Fraction", "Pump Control Type",
		},
	},
	{
		Type: "Coil:Heating:Electric",
		Fields: []string{
			"Name", "Availability Schedule Name", "Efficiency", "Nominal Capacity",
			"Air Inlet Node Name", "Air Outlet Node Name", "Temperature Setpoint Node Name",
		},
	},
	{
		Type: "Coil:Heating:Fuel",
		Fields: []string{
			"Name", "Availability Schedule Name", "Fuel Type", "Burner Efficiency",
			"Nominal Capacity", "Air Inlet Node Name", "Air Outlet Node Name",
			"Temperature Setpoint Node Name",
		},
	},
	{
		Type: "Coil:Heating:Water",
		Fields: []string{
			"Name", "Availability Schedule Name", "U-Factor Times Area Value",
			"Maximum Water Flow Rate", "Water Inlet Node Name", "Water Outlet Node Name",
			"Air Inlet Node Name", "Air Outlet Node Name", "Performance Input Method",
			"Rated Capacity", "Rated Inlet Water Temperature", "Rated Inlet Air Temperature",
			"Rated Outlet Water Temperature", "Rated Outlet Air Temperature",
			"Rated Ratio for Air and Water Convection",
		},
	},
	{
		Type: "Coil:Cooling:Water",
		Fields: []string{
			"Name", "Availability Schedule Name", "Design Water Flow Rate",
			"Design Air Flow Rate", "Design Inlet Water Temperature",
			"Design Inlet Air Temperature", "Design Outlet Air Temperature",
			"Design Inlet Air Humidity Ratio", "Design Outlet Air Humidity Ratio",
			"Water Inlet Node Name", "Water Outlet Node Name",
			"Air Inlet Node Name", "Air Outlet Node Name", "Type of Analysis", "Heat Exchanger Configuration",
		},
	},
	{
		Type: "Coil:Cooling:DX:SingleSpeed",
		Fields: []string{
			"Name", "Availability Schedule Name", "Gross Rated Total Cooling Capacity",
			"Gross Rated Sensible Heat Ratio", "Gross Rated Cooling COP", "Rated Air Flow Rate",
			"Rated Evaporator Fan Power Per Volume Flow Rate",
			"Air Inlet Node Name", "Air Outlet Node Name",
			"Total Cooling Capacity Function of Temperature Curve Name",
			"Total Cooling Capacity Function of Flow Fraction Curve Name",
			"Energy Input Ratio Function of Temperature Curve Name",
			"Energy Input Ratio Function of Flow Fraction Curve Name",
			"Part Load Fraction Correlation Curve Name",
			"Minimum Outdoor Dry-Bulb Temperature for Compressor Operation",
			"Nominal Time for Condensate Removal to Begin",
			"Ratio of Initial Moisture Evaporation Rate and Steady State Latent Capacity",
			"Maximum Cycling Rate", "Latent Capacity Time Constant",
			"Condenser Air Inlet Node Name",
		},
	},
	{
		Type: "Coil:Heating:DX:SingleSpeed",
		Fields: []string{
			"Name", "Availability Schedule Name", "Gross Rated Heating Capacity",
			"Gross Rated Heating COP", "Rated Air Flow Rate",
			"Rated Supply Fan Power Per Volume Flow Rate",
			"Air Inlet Node Name", "Air Outlet Node Name",
		},
	},
	{
		Type: "CoilSystem:Cooling:DX",
		Fields: []string{
			"Name", "Availability Schedule Name",
			"DX Cooling Coil System Inlet Node Name", "DX Cooling Coil System Outlet Node Name",
			"DX Cooling Coil System Sensor Node Name",
			"Cooling Coil Object Type", "Cooling Coil Name",
		},
	},
	{
		Type: "CoilSystem:Heating:DX",
		Fields: []string{
			"Name", "Availability Schedule Name", "Heating Coil Object Type", "Heating Coil Name",
		},
	},
	{
		Type: "Fan:ConstantVolume",
		Fields: []string{
			"Name", "Availability Schedule Name", "Fan Total Efficiency", "Pressure Rise",
			"Maximum Flow Rate", "Motor Efficiency", "Motor In Airstream Fraction",
			"Air Inlet Node Name", "Air Outlet Node Name",
		},
	},
	{
		Type: "Fan:OnOff",
		Fields: []string{
			"Name", "Availability Schedule Name", "Fan Total Efficiency", "Pressure Rise",
			"Maximum Flow Rate", "Motor Efficiency", "Motor In Airstream Fraction",
			"Air Inlet Node Name", "Air Outlet Node Name",
		},
	},
	{
		Type: "Fan:VariableVolume",
		Fields: []string{
			"Name", "Availability Schedule Name", "Fan Total Efficiency", "Pressure Rise",
			"Maximum Flow Rate", "Fan Power Minimum Flow Rate Input Method",
			"Fan Power Minimum Flow Fraction", "Fan Power Minimum Air Flow Rate",
			"Motor Efficiency", "Motor In Airstream Fraction",
			"Fan Power Coefficient 1", "Fan Power Coefficient 2", "Fan Power Coefficient 3",
			"Fan Power Coefficient 4", "Fan Power Coefficient 5",
			"Air Inlet Node Name", "Air Outlet Node Name",
		},
	},
	{
		Type: "Fan:SystemModel",
		Fields: []string{
			"Name", "Availability Schedule Name", "Air Inlet Node Name", "Air Outlet Node Name",
			"Design Maximum Air Flow Rate",
		},
	},
	{
		Type: "HeatExchanger:AirToAir:SensibleAndLatent",
		Fields: []string{
			"Name", "Availability Schedule Name", "Nominal Supply Air Flow Rate",
			"Sensible Effectiveness at 100% Heating Air Flow",
			"Latent Effectiveness at 100% Heating Air Flow",
			"Sensible Effectiveness at 75% Heating Air Flow",
			"Latent Effectiveness at 75% Heating Air Flow",
			"Sensible Effectiveness at 100% Cooling Air Flow",
			"Latent Effectiveness at 100% Cooling Air Flow",
			"Sensible Effectiveness at 75% Cooling Air Flow",
			"Latent Effectiveness at 75% Cooling Air Flow",
			"Supply Air Inlet Node Name", "Supply Air Outlet Node Name",
			"Exhaust Air Inlet Node Name", "Exhaust Air Outlet Node Name",
			"Nominal Electric Power",
		},
	},
	{
		Type: "HeatExchanger:Desiccant:BalancedFlow",
		Fields: []string{
			"Name", "Availability Schedule Name",
			"Regeneration Air Inlet Node Name", "Regeneration Air Outlet Node Name",
			"Process Air Inlet Node Name", "Process Air Outlet Node Name",
			"Heat Exchanger Performance Object Type", "Heat Exchanger Performance Name",
			"Economizer Lockout",
		},
	},
	{
		Type: "Dehumidifier:Desiccant:NoFans",
		Fields: []string{
			"Name", "Availability Schedule Name",
			"Process Air Inlet Node Name", "Process Air Outlet Node Name",
			"Regeneration Air Inlet Node Name", "Regeneration Fan Inlet Node Name",
			"Control Type", "Leaving Maximum Humidity Ratio Setpoint",
			"Nominal Process Air Flow Rate", "Nominal Process Air Velocity", "Rotor Power",
			"Regeneration Coil Object Type", "Regeneration Coil Name",
			"Regeneration Fan Object Type", "Regeneration Fan Name", "Performance Model Type",
		},
	},
	{
		Type: "Humidifier:Steam:Electric",
		Fields: []string{
			"Name", "Availability Schedule Name", "Rated Capacity", "Rated Power",
			"Rated Fan Power", "Standby Power", "Air Inlet Node Name", "Air Outlet Node Name",
			"Water Storage Tank Name",
		},
	},
	{
		Type: "SetpointManager:Scheduled",
		Fields: []string{
			"Name", "Control Variable", "Schedule Name", "Setpoint Node or NodeList Name",
		},
	},
	{
		Type: "SetpointManager:ReturnTemperature:ChilledWater",
		Fields: []string{
			"Name", "Plant Loop Supply Outlet Node", "Plant Loop Supply Inlet Node",
			"Minimum Supply Temperature Setpoint", "Maximum Supply Temperature Setpoint",
			"Return Temperature Setpoint Input Type",
			"Return Temperature Setpoint Constant Value",
			"Return Temperature Setpoint Schedule Name",
		},
	},
	{
		Type: "SetpointManager:ReturnTemperature:HotWater",
		Fields: []string{
			"Name", "Plant Loop Supply Outlet Node", "Plant Loop Supply Inlet Node",
			"Minimum Supply Temperature Setpoint", "Maximum Supply Temperature Setpoint",
			"Return Temperature Setpoint Input Type",
			"Return Temperature Setpoint Constant Value",
			"Return Temperature Setpoint Schedule Name",
		},
	},
	{
		Type:   "OutdoorAir:Node",
		Fields: []string{"Name", "Height Above Ground"},
	},
	{
		Type:            "Schedule:Compact",
		Fields:          []string{"Name", "Schedule Type Limits Name", "Field 1"},
		ExtensibleStart: 2, ExtensibleSize: 1,
	},
	{
		Type: "Construction",
		Fields: []string{
			"Name", "Outside Layer", "Layer 2", "Layer 3", "Layer 4", "Layer 5",
			"Layer 6", "Layer 7", "Layer 8", "Layer 9", "Layer 10",
		},
	},
	{
		Type: "Material",
		Fields: []string{
			"Name", "Roughness", "Thickness", "Conductivity", "Density", "Specific Heat",
			"Thermal Absorptance", "Solar Absorptance", "Visible Absorptance",
		},
	},
	{
		Type:    "Output:Variable",
		Fields:  []string{"Key Value", "Variable Name", "Reporting Frequency", "Schedule Name"},
		Unkeyed: true,
	},
}
