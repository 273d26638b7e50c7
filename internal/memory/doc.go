// Package memory configures Go's soft memory limit for containers and
// throttles import work under memory pressure.
//
// # Configuration
//
// GOMAXPROCS follows cgroup CPU limits automatically, GOMEMLIMIT does not.
// Call [ConfigureFromEnv] early in main:
//
//   - GOMEMLIMIT: standard Go variable, takes precedence when set.
//   - MEMORY_LIMIT: container limit in bytes (or a size like "1GiB"), usually
//     passed through the Kubernetes Downward API.
//   - MEMORY_RATIO: share of MEMORY_LIMIT for the heap, default 0.85.
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// # Backpressure
//
// A [Monitor] samples heap usage every CheckInterval. When usage reaches
// CriticalWaterMark it pauses: [Monitor.Wait] blocks until usage drops below
// HighWaterMark again. The importer calls Wait before each image copy so a
// large archive cannot push the process past its limit.
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
// Without a configured limit the monitor never pauses.
package memory
