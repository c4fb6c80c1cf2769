package middleware

import (
	"github.com/grafana/pyroscope-go"

	"github.com/duynhne/profile-web/config"
)

var profiler *pyroscope.Profiler

// InitProfiling starts continuous profiling, tagged with the same service
// name and namespace as the traces.
func InitProfiling(pc config.ProfilingConfig) error {
	serviceName, namespace := serviceIdentity(pc.ServiceName)

	cfg := pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   pc.Endpoint,
		Tags: map[string]string{
			"service":   serviceName,
			"namespace": namespace,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
		Logger: pyroscope.StandardLogger,
	}

	// Start profiling
	var err error
	profiler, err = pyroscope.Start(cfg)
	return err
}

// StopProfiling stops Pyroscope profiling
func StopProfiling() {
	if profiler != nil {
		_ = profiler.Stop()
	}
}
