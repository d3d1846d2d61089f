package env

import (
	"os"
)

// PodName example: k8ssta-dealexchange-6868d88fbd-bz8zv, tagged onto every metric
func PodName() string {
	return os.Getenv("PODNAME")
}

// ConfigPath overrides the default config file location unless --config is given
func ConfigPath() string {
	return os.Getenv("CONFIG_PATH")
}
