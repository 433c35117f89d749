// Package logger provides structured zerolog logging for transducekit.
//
// Loggers carry a service tag and can be narrowed to a component, a plan run
// or a request. Run and request identifiers travel through context.Context so
// operators deep in a pipeline log with the same run_id as the driver.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("plan")
//	log.WithContext(ctx).Info("run finished", logger.Fields(logger.FieldItems, 12))
package logger
