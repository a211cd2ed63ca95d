package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() {
	LoadDefault()

	configFile := os.Getenv("TASKMANAGER_CONFIG_FILE")
	if configFile == "" {
		configFile = "taskmanager.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	} else {
		log.Printf("Successfully loaded config from file: %s", configFile)
	}

	ApplyEnvOverrides()

	log.Printf("Final config - storage backend: %s, http: %s:%d",
		_loaded.Common.Storage.Backend,
		_loaded.Common.Http.Host,
		_loaded.Common.Http.Port)
}

func LoadDefault() {
	config := defaultConfig()
	_loaded = &config
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := defaultConfig()

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	_loaded = &cfg
	return nil
}

// Validate checks the settings that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Common.Storage.Backend {
	case BackendFile, BackendMemory, BackendPostgres, BackendMySQL, BackendS3, BackendNeo4j:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Common.Storage.Backend)
	}
	if c.Common.Http.Port <= 0 || c.Common.Http.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.Common.Http.Port)
	}
	return nil
}

// Storage backends
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendS3       = "s3"
	BackendNeo4j    = "neo4j"
)

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
func defaultConfig() Config {
	return Config{
		Common: Common{
			Log: logConfig{
				Level:  "info",
				Format: "json",
			},
			Http: httpConfig{
				Host:           "0.0.0.0",
				Port:           8000,
				MaxRequestSize: 1048576,
			},
			Cors: corsConfig{
				AllowOrigins: []string{
					"http://localhost:3000",
					"http://127.0.0.1:3000",
					"https://task-manager-frontend.vercel.app",
				},
				MaxAgeSeconds: 3600,
			},
			Storage: StorageConfig{
				Backend: BackendFile,
				File: FileStorageConfig{
					Dir: ".",
				},
				Postgres: PostgresStorageConfig{
					User:               "postgres",
					Password:           "postgres",
					Host:               "localhost",
					Port:               5432,
					Database:           "taskmanager",
					MaxOpenConnections: 10,
				},
				MySQL: MySQLStorageConfig{
					DSN:                "root:root@tcp(127.0.0.1:3306)/taskmanager",
					MaxOpenConnections: 10,
				},
				S3: S3StorageConfig{
					Bucket:       "taskmanager",
					Region:       "us-east-1",
					UsePathStyle: true,
				},
				Neo4j: Neo4jStorageConfig{
					URI:      "bolt://localhost:7687",
					Username: "neo4j",
					Database: "neo4j",
				},
			},
		},
	}
}

type Common struct {
	Log     logConfig     `yaml:"log"`
	Http    httpConfig    `yaml:"http"`
	Cors    corsConfig    `yaml:"cors"`
	Storage StorageConfig `yaml:"storage"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type httpConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxRequestSize int64  `yaml:"max_request_size"`
}

type corsConfig struct {
	AllowOrigins  []string `yaml:"allow_origins"`
	MaxAgeSeconds int      `yaml:"max_age_seconds"`
}

// StorageConfig selects and configures the collection backend
type StorageConfig struct {
	Backend  string                `yaml:"backend"` // file, memory, postgres, mysql, s3 or neo4j
	File     FileStorageConfig     `yaml:"file"`
	Postgres PostgresStorageConfig `yaml:"postgres"`
	MySQL    MySQLStorageConfig    `yaml:"mysql"`
	S3       S3StorageConfig       `yaml:"s3"`
	Neo4j    Neo4jStorageConfig    `yaml:"neo4j"`
}

type FileStorageConfig struct {
	Dir string `yaml:"dir"` // users.json and tasks.json live here
}

type PostgresStorageConfig struct {
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Database           string `yaml:"database"`
	MaxOpenConnections int    `yaml:"max_open_connections"`
}

func (c PostgresStorageConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
	)
}

type MySQLStorageConfig struct {
	DSN                string `yaml:"dsn"`
	MaxOpenConnections int    `yaml:"max_open_connections"`
}

type S3StorageConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"` // set for MinIO and other S3-compatible servers
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

type Neo4jStorageConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Cors() corsConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Cors
}

func Storage() StorageConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Storage
}

// Get returns the full configuration
func Get() *Config {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded
}

func ApplyEnvOverrides() {
	if _loaded == nil {
		return
	}

	if level := os.Getenv("TASKMANAGER_LOG_LEVEL"); level != "" {
		_loaded.Common.Log.Level = level
	}
	if format := os.Getenv("TASKMANAGER_LOG_FORMAT"); format != "" {
		_loaded.Common.Log.Format = format
	}

	if httpHost := os.Getenv("TASKMANAGER_HTTP_HOST"); httpHost != "" {
		_loaded.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("TASKMANAGER_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			_loaded.Common.Http.Port = port
		}
	}

	if origins := os.Getenv("TASKMANAGER_CORS_ORIGINS"); origins != "" {
		_loaded.Common.Cors.AllowOrigins = splitList(origins)
	}

	if backend := os.Getenv("TASKMANAGER_STORAGE_BACKEND"); backend != "" {
		_loaded.Common.Storage.Backend = backend
	}
	if dir := os.Getenv("TASKMANAGER_DATA_DIR"); dir != "" {
		_loaded.Common.Storage.File.Dir = dir
	}

	if dbHost := os.Getenv("TASKMANAGER_DB_HOST"); dbHost != "" {
		_loaded.Common.Storage.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("TASKMANAGER_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			_loaded.Common.Storage.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("TASKMANAGER_DB_USER"); dbUser != "" {
		_loaded.Common.Storage.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("TASKMANAGER_DB_PASSWORD"); dbPassword != "" {
		_loaded.Common.Storage.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("TASKMANAGER_DB_NAME"); dbName != "" {
		_loaded.Common.Storage.Postgres.Database = dbName
	}

	if mysqlDSN := os.Getenv("TASKMANAGER_MYSQL_DSN"); mysqlDSN != "" {
		_loaded.Common.Storage.MySQL.DSN = mysqlDSN
	}

	if bucket := os.Getenv("TASKMANAGER_S3_BUCKET"); bucket != "" {
		_loaded.Common.Storage.S3.Bucket = bucket
	}
	if endpoint := os.Getenv("TASKMANAGER_S3_ENDPOINT"); endpoint != "" {
		_loaded.Common.Storage.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("TASKMANAGER_S3_ACCESS_KEY"); accessKey != "" {
		_loaded.Common.Storage.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("TASKMANAGER_S3_SECRET_KEY"); secretKey != "" {
		_loaded.Common.Storage.S3.SecretKey = secretKey
	}

	if neo4jURI := os.Getenv("TASKMANAGER_NEO4J_URI"); neo4jURI != "" {
		_loaded.Common.Storage.Neo4j.URI = neo4jURI
	}
	if neo4jUsername := os.Getenv("TASKMANAGER_NEO4J_USERNAME"); neo4jUsername != "" {
		_loaded.Common.Storage.Neo4j.Username = neo4jUsername
	}
	if neo4jPassword := os.Getenv("TASKMANAGER_NEO4J_PASSWORD"); neo4jPassword != "" {
		_loaded.Common.Storage.Neo4j.Password = neo4jPassword
	}
	if neo4jDatabase := os.Getenv("TASKMANAGER_NEO4J_DATABASE"); neo4jDatabase != "" {
		_loaded.Common.Storage.Neo4j.Database = neo4jDatabase
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
