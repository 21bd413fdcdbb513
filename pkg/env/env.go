// Package env keeps names of environment variables with special significance to
// loam.
package env

// Environment variables with special significance to loam.
//
// Note that some of these env vars may be significant only in special
// circumstances, such as when running unit tests.
const (
	// Path of the configuration file, used when --config is not given.
	LOAM_CONFIG = "LOAM_CONFIG"
	// Scale of timeouts in tests.
	LOAM_TEST_TIME_SCALE = "LOAM_TEST_TIME_SCALE"
	XDG_CONFIG_HOME      = "XDG_CONFIG_HOME"
)
