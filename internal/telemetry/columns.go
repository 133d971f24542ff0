// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package telemetry // import "github.com/fleetpulse/maintenance/internal/telemetry"

// Raw sensor channel names as emitted by the fleet gateway. The dotted
// prefixes group channels by ECU subsystem.
const (
	ColDPFUpstreamPressure   = "dpf.diff_pressure_kpa_upstream"
	ColDPFDownstreamPressure = "dpf.diff_pressure_kpa_downstream"
	ColDPFSootLoad           = "dpf.soot_load_pct_est"
	ColDPFFailedRegenCount   = "dpf.failed_regen_count"
	ColDPFPreTemp            = "dpf.pre_dpf_temp_c"
	ColDPFPostTemp           = "dpf.post_dpf_temp_c"
	ColDPFRegenFlag          = "dpf.regen_event_flag"

	ColEngineRPM           = "engine_powertrain.engine_rpm"
	ColEngineLoad          = "engine_powertrain.engine_load_pct"
	ColOilLevel            = "engine_powertrain.oil_level_l"
	ColOilPressure         = "engine_powertrain.oil_pressure_bar"
	ColFuelConsumption     = "engine_powertrain.fuel_consumption_lph"
	ColExhaustBackpressure = "engine_powertrain.exhaust_backpressure_kpa"
	ColBoostPressure       = "engine_powertrain.boost_pressure_kpa"

	ColSpeed       = "vehicle_dynamics.speed_kmh"
	ColIdleSeconds = "vehicle_dynamics.idle_seconds_since_start"

	ColNOxUp         = "scr.nox_up_ppm"
	ColNOxDown       = "scr.nox_down_ppm"
	ColNOxConversion = "scr.nox_conversion_pct"
	ColSCRInletTemp  = "scr.scr_inlet_temp_c"
	ColSCROutletTemp = "scr.scr_outlet_temp_c"

	ColDEFQuality      = "def.def_quality_index"
	ColDEFInjectorDuty = "def.injector_duty_cycle_pct"
	ColDEFPumpPressure = "def.def_pump_pressure_bar"
	ColDEFPumpCurrent  = "def.def_pump_current_a"

	ColCANDropRate = "can_bus.message_drop_rate"
)

// Derived (engineered) column names attached by the feature builders.
const (
	ColDPFDeltaP        = "dpf_delta_p"
	ColNOxDivergence    = "nox_sensor_divergence"
	ColSCRTempDelta     = "scr_temp_delta"
	ColNOxConvSlope7d   = "nox_conv_slope_7d"
	ColNOxConvSlope30d  = "nox_conv_slope_30d"
	ColAvgLoad7d        = "avg_load_7d"
	ColAvgSpeed7d       = "avg_speed_7d"
	ColOilLevelChange   = "oil_level_change_30d"
	ColOilSlope         = "oil_slope_7d"
	ColRegenFreq        = "regen_freq_30d"
	ColFailedRegenDelta = "failed_regen_30d"
	ColBoostStd         = "boost_std_7d"
	ColFuelTrend        = "fuel_trend_7d"
	ColIdleRatio        = "idle_ratio_7d"
	ColBackpressureMean = "backpressure_mean_7d"
)
