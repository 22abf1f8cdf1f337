// Package datapoint maps raw protocol telegrams to named measurements.
//
// The gateway addresses every readable item by a numeric info number
// that is meaningless outside the installation. This package holds the
// per-device datapoint tables (info number → name, unit, divisor),
// resolves the telegram id list to request for each device, and
// converts raw telegram readings into Update records for the consumer.
//
// Tables are built once from configuration and are read-only afterward,
// so lookups are safe for concurrent use.
package datapoint
