// Package storage reads rule-set documents and SQL templates from object
// storage. Locations are bucket/key pairs; S3 and a local directory tree are
// supported backends.
package storage
