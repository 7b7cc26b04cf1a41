package storage

import (
	"fmt"
	"strings"
)

// Location addresses one object.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// schemes accepted in front of a route. The backend is chosen by
// configuration, not by the scheme.
var schemes = []string{"s3://", "s3a://", "file://"}

// ParseRoute splits a route such as "s3://bucket/path/to/key.sql" into its
// bucket and key. A route without a scheme is read as "bucket/key".
func ParseRoute(route string) (Location, error) {
	rest := strings.TrimSpace(route)
	for _, s := range schemes {
		if strings.HasPrefix(rest, s) {
			rest = rest[len(s):]
			break
		}
	}
	if strings.Contains(rest, "://") {
		return Location{}, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidRoute, route)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%w: missing bucket in %q", ErrInvalidRoute, route)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// ResolveBucket substitutes the deployment environment for every "-env-"
// token in a bucket name: "data-env-artifacts" becomes "data-prod-artifacts".
func ResolveBucket(bucket, env string) string {
	if env == "" {
		return bucket
	}
	return strings.ReplaceAll(bucket, "-env-", "-"+env+"-")
}

// ForEnv returns the location with its bucket resolved for env.
func (l Location) ForEnv(env string) Location {
	l.Bucket = ResolveBucket(l.Bucket, env)
	return l
}
