// Package logging adapts zerolog to the calculation.Logger interface so the
// engine, payroll runner and stores share one leveled logger.
package logging
