// Package config contains utilities for loading configs
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/go-playground/validator/v10"
)

const (
	configPathVar      = "RECETARIO_CONFIG"
	configFilePath     = "/data/recetario.yaml"
	appSecretBytes     = 32
	appSecretFilePerms = 0o600
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

const (
	DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	DefaultAddress      = ":8080"
	DefaultAuthRate     = 20
)

type DocumentBackend string

const (
	DocumentBackendMemory   DocumentBackend = "memory"
	DocumentBackendPostgres DocumentBackend = "postgres"
	DocumentBackendDynamo   DocumentBackend = "dynamodb"
)

func (d DocumentBackend) Validate() error {
	switch d {
	case DocumentBackendMemory, DocumentBackendPostgres, DocumentBackendDynamo:
		return nil
	}
	return fmt.Errorf("unknown document backend: %q", d)
}

type BlobBackend string

const (
	BlobBackendFileserver BlobBackend = "fileserver"
	BlobBackendMinio      BlobBackend = "minio"
	BlobBackendS3         BlobBackend = "s3"
)

func (b BlobBackend) Validate() error {
	switch b {
	case BlobBackendFileserver, BlobBackendMinio, BlobBackendS3:
		return nil
	}
	return fmt.Errorf("unknown blob backend: %q", b)
}

type AppSecretValue string

func (a *AppSecretValue) Validate() error {
	if a == nil {
		return errors.New("secret should not be nil")
	}
	if len([]byte(*a)) < appSecretBytes {
		return errors.New("secret should be at least 32 bytes")
	}
	return nil
}

var ErrBackendNotConfigured = errors.New("selected backend is not configured")

func splitFieldList(param string) []string {
	// "A,B,C" or "A B C"
	param = strings.ReplaceAll(param, " ", ",")
	parts := strings.Split(param, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// allOrNothing is a cross-field validator: the fields named in its
// parameter (comma- or space-separated) must be either all zero or all
// non-zero. It is attached to a placeholder field and inspects the parent
// struct. Nil pointers and interfaces count as zero. An unknown field name
// or an empty list fails validation to surface misconfiguration.
func allOrNothing(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		if parent.IsNil() {
			return true
		}
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return false
	}

	names := splitFieldList(fl.Param())
	if len(names) == 0 {
		return false
	}

	hasZero := false
	hasNonZero := false

	for _, name := range names {
		f := parent.FieldByName(name)
		if !f.IsValid() {
			return false
		}

		for (f.Kind() == reflect.Pointer || f.Kind() == reflect.Interface) && !f.IsNil() {
			f = f.Elem()
		}

		if f.IsZero() {
			hasZero = true
		} else {
			hasNonZero = true
		}

		if hasZero && hasNonZero {
			return false
		}
	}

	return true
}

func registerAllOrNothing(v *validator.Validate) {
	_ = v.RegisterValidation("allOrNothing", allOrNothing)
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors) //nolint:errorlint
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		if e.Tag() == "allOrNothing" {
			// "Config.Documents.Postgres.Validate" -> "Postgres"
			namespace := e.Namespace()
			parts := strings.Split(namespace, ".")
			var structName string
			//nolint:mnd
			if len(parts) >= 2 {
				structName = parts[len(parts)-2]
			}

			var fields string
			switch structName {
			case "Postgres":
				fields = "Port, Host, Database, User, and Password"
			case "Minio":
				fields = "Endpoint, AccessKey, SecretKey, and Bucket"
			case "Garage":
				fields = "AdminHost and AdminToken"
			default:
				fields = "all related fields"
			}

			return fmt.Errorf(
				"%s configuration is incomplete: either all fields must be set (%s) or all must be empty",
				structName, fields)
		}
	}

	return err
}

type AppSecret struct {
	Value   *AppSecretValue `yaml:"value" validate:"omitempty,validateFn"`
	Path    string          `yaml:"path" validate:"omitempty,filepath"`
	Version string          `yaml:"version"`
}

type Postgres struct {
	Port     uint16 `yaml:"port"`
	Host     string `yaml:"host" validate:"omitempty,hostname_rfc1123"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=Port Host Database User Password"`
}

func (p Postgres) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

type Dynamo struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
}

type Documents struct {
	Backend  DocumentBackend `yaml:"backend" validate:"validateFn"`
	Postgres Postgres        `yaml:"postgres"`
	Dynamo   Dynamo          `yaml:"dynamo"`
}

type Fileserver struct {
	Volume    string `yaml:"volume"`
	URLPrefix string `yaml:"url_prefix"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url" validate:"omitempty,url"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=Endpoint AccessKey SecretKey Bucket"`
}

type S3 struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `yaml:"use_path_style"`
	PublicURL    string `yaml:"public_url" validate:"omitempty,url"`
}

// Garage holds the admin API access used to lay out a fresh Garage
// cluster backing the minio blob backend.
type Garage struct {
	AdminHost  string `yaml:"admin_host"`
	AdminToken string `yaml:"admin_token"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=AdminHost AdminToken"`
}

type Blobs struct {
	Backend    BlobBackend `yaml:"backend" validate:"validateFn"`
	Fileserver Fileserver  `yaml:"fileserver"`
	Minio      Minio       `yaml:"minio"`
	S3         S3          `yaml:"s3"`
	Garage     Garage      `yaml:"garage"`
}

type Google struct {
	ClientID     string `yaml:"client_id"`
	TokenInfoURL string `yaml:"tokeninfo_url" validate:"omitempty,url"`
}

type HTTP struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,url"`
	// AuthRate is the number of sign-in attempts allowed per IP each minute.
	AuthRate int `yaml:"auth_rate" validate:"gte=0"`
}

type Config struct {
	AppSecret  AppSecret `yaml:"app_secret"`
	Documents  Documents `yaml:"documents"`
	Blobs      Blobs     `yaml:"blobs"`
	Google     Google    `yaml:"google"`
	HTTP       HTTP      `yaml:"http"`
	HostOrigin string    `yaml:"host_origin" validate:"url"`
	Env        string    `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
	LogLevel   string    `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

func newAppSecret() (string, error) {
	token := make([]byte, appSecretBytes)
	if _, err := rand.Reader.Read(token); err != nil {
		return "", fmt.Errorf("creating app secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}

func loadAppSecret(config *Config) error {
	if config.AppSecret.Value != nil {
		return nil
	}

	var secret string
	if f1, err := os.Lstat(config.AppSecret.Path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking secret path: %w", err)
		}

		file, err := os.OpenFile(config.AppSecret.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, appSecretFilePerms)
		if err != nil {
			return fmt.Errorf("creating secret file: %w", err)
		}
		defer func() { _ = file.Close() }()

		secret, err = newAppSecret()
		if err != nil {
			return fmt.Errorf("generating new app secret: %w", err)
		}

		if _, err := file.WriteString(secret); err != nil {
			return fmt.Errorf("writing secret file: %w", err)
		}
	} else {
		if f1.IsDir() {
			return fmt.Errorf("expected file, got directory at %q", config.AppSecret.Path)
		}
		data, err := os.ReadFile(config.AppSecret.Path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		secret = strings.TrimSpace(string(data))
	}
	val := AppSecretValue(secret)
	config.AppSecret.Value = &val
	return nil
}

// checkBackends ensures the selected backends have the settings they need.
func checkBackends(config Config) error {
	switch config.Documents.Backend {
	case DocumentBackendPostgres:
		if config.Documents.Postgres.Host == "" {
			return fmt.Errorf("documents backend %q: %w", config.Documents.Backend, ErrBackendNotConfigured)
		}
	case DocumentBackendDynamo:
		if config.Documents.Dynamo.Table == "" {
			return fmt.Errorf("documents backend %q: %w", config.Documents.Backend, ErrBackendNotConfigured)
		}
	}

	switch config.Blobs.Backend {
	case BlobBackendMinio:
		if config.Blobs.Minio.Endpoint == "" {
			return fmt.Errorf("blobs backend %q: %w", config.Blobs.Backend, ErrBackendNotConfigured)
		}
	case BlobBackendS3:
		if config.Blobs.S3.Bucket == "" {
			return fmt.Errorf("blobs backend %q: %w", config.Blobs.Backend, ErrBackendNotConfigured)
		}
	}
	return nil
}

func validate(config *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	registerAllOrNothing(v)
	if err := v.Struct(config); err != nil {
		return formatValidationError(err)
	}
	if err := checkBackends(*config); err != nil {
		return err
	}
	if err := loadAppSecret(config); err != nil {
		return fmt.Errorf("loading app secret: %w", err)
	}
	return nil
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return splitFieldList(s)
}

func loadConfigFromEnv() (Config, error) {
	conf := Config{
		HostOrigin: loadWithDefault("HOST_ORIGIN", "http://localhost:8080"),
		Env:        loadWithDefault("ENV", EnvDev),
		LogLevel:   loadWithDefault("LOG_LEVEL", ""),
	}

	// AppSecret
	conf.AppSecret = AppSecret{
		Path:    loadWithDefault("APP_SECRET_PATH", "/data/secret"),
		Version: loadWithDefault("APP_SECRET_VERSION", "1"),
	}
	if v := AppSecretValue(loadWithDefault("APP_SECRET", "")); v != "" {
		conf.AppSecret.Value = &v
	}

	// Documents
	conf.Documents = Documents{
		Backend: DocumentBackend(loadWithDefault("DOCUMENT_BACKEND", string(DocumentBackendMemory))),
		Postgres: Postgres{
			Database: loadWithDefault("DATABASE", ""),
			User:     loadWithDefault("DATABASE_USER", ""),
			Password: loadWithDefault("DATABASE_PASSWORD", ""),
		},
		Dynamo: Dynamo{
			Table:    loadWithDefault("DYNAMO_TABLE", ""),
			Region:   loadWithDefault("DYNAMO_REGION", ""),
			Endpoint: loadWithDefault("DYNAMO_ENDPOINT", ""),
		},
	}
	// Host and port only default when postgres is being configured.
	if conf.Documents.Postgres.Database != "" || conf.Documents.Postgres.User != "" ||
		conf.Documents.Postgres.Password != "" {
		conf.Documents.Postgres.Host = loadWithDefault("DATABASE_HOST", "localhost")
		databasePort := loadWithDefault("DATABASE_PORT", "5432")
		port, err := strconv.ParseUint(databasePort, 10, 16)
		if err != nil {
			return conf, fmt.Errorf("invalid DATABASE_PORT (%q): %w", databasePort, err)
		}
		conf.Documents.Postgres.Port = uint16(port)
	}

	// Blobs
	conf.Blobs = Blobs{
		Backend: BlobBackend(loadWithDefault("BLOB_BACKEND", string(BlobBackendFileserver))),
		Fileserver: Fileserver{
			Volume:    loadWithDefault("FILESERVER_VOLUME", "/data/files"),
			URLPrefix: loadWithDefault("FILESERVER_URL_PREFIX", "/files"),
		},
		Minio: Minio{
			Endpoint:  loadWithDefault("MINIO_ENDPOINT", ""),
			AccessKey: loadWithDefault("MINIO_ACCESS_KEY", ""),
			SecretKey: loadWithDefault("MINIO_SECRET_KEY", ""),
			Bucket:    loadWithDefault("MINIO_BUCKET", ""),
			Region:    loadWithDefault("MINIO_REGION", ""),
			PublicURL: loadWithDefault("MINIO_PUBLIC_URL", ""),
		},
		S3: S3{
			Bucket:    loadWithDefault("S3_BUCKET", ""),
			Region:    loadWithDefault("S3_REGION", ""),
			Endpoint:  loadWithDefault("S3_ENDPOINT", ""),
			PublicURL: loadWithDefault("S3_PUBLIC_URL", ""),
		},
		Garage: Garage{
			AdminHost:  loadWithDefault("GARAGE_ADMIN_HOST", ""),
			AdminToken: loadWithDefault("GARAGE_ADMIN_TOKEN", ""),
		},
	}
	useSSL := loadWithDefault("MINIO_USE_SSL", "false")
	if b, err := strconv.ParseBool(useSSL); err != nil {
		return conf, fmt.Errorf("invalid MINIO_USE_SSL (%q): %w", useSSL, err)
	} else {
		conf.Blobs.Minio.UseSSL = b
	}
	pathStyle := loadWithDefault("S3_USE_PATH_STYLE", "false")
	if b, err := strconv.ParseBool(pathStyle); err != nil {
		return conf, fmt.Errorf("invalid S3_USE_PATH_STYLE (%q): %w", pathStyle, err)
	} else {
		conf.Blobs.S3.UsePathStyle = b
	}

	// Google
	conf.Google = Google{
		ClientID:     loadWithDefault("GOOGLE_CLIENT_ID", ""),
		TokenInfoURL: loadWithDefault("GOOGLE_TOKENINFO_URL", DefaultTokenInfoURL),
	}

	// HTTP
	conf.HTTP = HTTP{
		Address:        loadWithDefault("HTTP_ADDRESS", DefaultAddress),
		AllowedOrigins: parseList(loadWithDefault("ALLOWED_ORIGINS", "")),
	}
	authRate := loadWithDefault("AUTH_RATE", strconv.Itoa(DefaultAuthRate))
	if n, err := strconv.Atoi(authRate); err != nil {
		return conf, fmt.Errorf("invalid AUTH_RATE (%q): %w", authRate, err)
	} else {
		conf.HTTP.AuthRate = n
	}

	if err := validate(&conf); err != nil {
		return conf, err
	}
	return conf, nil
}

func setFileDefaults(config *Config) {
	if config.AppSecret.Path == "" {
		config.AppSecret.Path = "/data/secret"
	}
	if config.AppSecret.Version == "" {
		config.AppSecret.Version = "1"
	}
	if config.Env == "" {
		config.Env = EnvDev
	}
	if config.HostOrigin == "" {
		config.HostOrigin = "http://localhost:8080"
	}
	if config.Documents.Backend == "" {
		config.Documents.Backend = DocumentBackendMemory
	}
	// Only default host and port if postgres is being configured
	pg := &config.Documents.Postgres
	if pg.Database != "" || pg.User != "" || pg.Password != "" {
		if pg.Host == "" {
			pg.Host = "localhost"
		}
		if pg.Port == 0 {
			pg.Port = 5432
		}
	}
	if config.Blobs.Backend == "" {
		config.Blobs.Backend = BlobBackendFileserver
	}
	if config.Blobs.Fileserver.Volume == "" {
		config.Blobs.Fileserver.Volume = "/data/files"
	}
	if config.Blobs.Fileserver.URLPrefix == "" {
		config.Blobs.Fileserver.URLPrefix = "/files"
	}
	if config.Google.TokenInfoURL == "" {
		config.Google.TokenInfoURL = DefaultTokenInfoURL
	}
	if config.HTTP.Address == "" {
		config.HTTP.Address = DefaultAddress
	}
	if config.HTTP.AuthRate == 0 {
		config.HTTP.AuthRate = DefaultAuthRate
	}
}

func loadConfigFromFile(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	setFileDefaults(&config)

	if err := validate(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func configFileExists(path string) bool {
	f, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return !f.IsDir()
}

// LoadConfig reads the YAML file named by RECETARIO_CONFIG (default
// /data/recetario.yaml) when it exists, and the environment otherwise.
func LoadConfig() (Config, error) {
	path := loadWithDefault(configPathVar, configFilePath)
	if configFileExists(path) {
		return loadConfigFromFile(path)
	}

	return loadConfigFromEnv()
}

func (c Config) Production() bool {
	return c.Env == EnvProd
}
