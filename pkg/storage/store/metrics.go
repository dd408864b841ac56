package store

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zphrs/twizzler-object-store/pkg/debug"
)

var (
	// ObjectsTotal tracks the number of objects in the store
	ObjectsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tos",
		Subsystem: "storage",
		Name:      "objects_total",
		Help:      "Number of objects in the store",
	})

	// StoredBytesTotal tracks bytes held in chunk files across all objects
	StoredBytesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tos",
		Subsystem: "storage",
		Name:      "stored_bytes_total",
		Help:      "Bytes held in chunk files across all objects",
	})

	// WriteOperations tracks writes by merge plan
	WriteOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tos",
		Subsystem: "storage",
		Name:      "write_operations_total",
		Help:      "Total number of write operations",
	}, []string{"plan"}) // plan: "insert", "overwrite", "extend", "splice", "fold"

	// WriteBytes tracks logical bytes written
	WriteBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tos",
		Subsystem: "storage",
		Name:      "write_bytes_total",
		Help:      "Logical bytes written",
	})

	// ReadOperations tracks completed reads
	ReadOperations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tos",
		Subsystem: "storage",
		Name:      "read_operations_total",
		Help:      "Total number of read operations",
	})

	// ReadBytes tracks logical bytes read, zero-filled gaps included
	ReadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tos",
		Subsystem: "storage",
		Name:      "read_bytes_total",
		Help:      "Logical bytes read, zero-filled gaps included",
	})

	// ExtendOperations tracks completed object concatenations
	ExtendOperations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tos",
		Subsystem: "storage",
		Name:      "extend_operations_total",
		Help:      "Total number of object concatenations",
	})
)

func init() {
	// Register metrics with the global registry
	debug.Registry().MustRegister(
		ObjectsTotal,
		StoredBytesTotal,
		WriteOperations,
		WriteBytes,
		ReadOperations,
		ReadBytes,
		ExtendOperations,
	)
}
