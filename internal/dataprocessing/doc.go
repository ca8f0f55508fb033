// Package dataprocessing handles ingestion of I-V sweep files exported
// by measurement instruments.
//
// # Architecture
//
// The package is organized into three components:
//
//  1. Loader: reads delimited .dat/.csv exports (and .xlsx workbooks)
//     and strips the instrument preamble
//  2. Cleaner: drops artifact and empty columns and normalizes headers
//     to a canonical lowercase/underscore form
//  3. Derived quantities: current density from a configured sample
//     area, and temperature group keys
//
// # Data Flow
//
//	Instrument file → Loader → raw records → Cleaner → Table → derived columns
//
// The loader is tolerant by design: malformed or short rows are skipped
// rather than failing the whole file, since instrument exports commonly
// contain ragged status lines. A file that yields zero usable rows is a
// DataFormatError.
//
// # Column identity
//
// Columns are addressed by normalized header name, never by position.
// "I-V Voltage (CH1) (V)" normalizes to "i-v_voltage_ch1_v"; the
// canonical channel names are exported as constants.
package dataprocessing
