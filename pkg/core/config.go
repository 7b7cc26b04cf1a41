package core

// TargetConfig holds warehouse target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// StorageConfig selects and configures the object storage holding rule-sets
// and SQL templates.
type StorageConfig struct {
	Type string `koanf:"type"` // s3, local

	// Local storage: buckets are directories below Root.
	Root string `koanf:"root"`

	// S3 storage
	Region         string `koanf:"region"`
	Endpoint       string `koanf:"endpoint"`
	AccessKeyID    string `koanf:"access_key_id"`
	SecretKey      string `koanf:"secret_key"`
	ForcePathStyle bool   `koanf:"force_path_style"`
}

// PartitionConfig restricts generic table rules to one partition.
type PartitionConfig struct {
	Column string `koanf:"column"`
	Value  string `koanf:"value"`
}

// IsSet reports whether a partition filter is configured.
func (p *PartitionConfig) IsSet() bool {
	return p != nil && p.Column != "" && p.Value != ""
}
