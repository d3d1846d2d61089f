package keys

import (
	"strings"
)

const (
	// PfxNonce is used for prefixing sign-in nonce redis key
	PfxNonce = "nonce"
	// PfxDealStatus is used for prefixing cached settlement status
	PfxDealStatus = "dealStatus"
	// PfxHealthCheck is used for the liveness probe key
	PfxHealthCheck = "healthCheck"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// GetPrefix returns the leading components of key, used as metric tag
func GetPrefix(key string) string {
	s := strings.Split(key, ":")
	if len(s) > 2 {
		return strings.Join([]string{s[0], s[1]}, ":")
	} else if len(s) > 1 {
		return s[0]
	}
	return ""
}
