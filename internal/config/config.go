package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	Years []int `validate:"required,min=1,dive,gte=2000,lte=2100"`

	// GIOŚ archive source.
	ArchiveBaseURL  string         `validate:"required,url"`
	ArchiveIDs      map[int]string `validate:"required,min=1,dive,required"`
	ArchiveFiles    map[int]string `validate:"required,min=1,dive,required"`
	ArchiveDir      string
	MetadataPath    string        `validate:"required"`
	FetchTimeout    time.Duration `validate:"gt=0"`
	FetchRetries    int           `validate:"gte=0,lte=10"`
	ArchiveCacheLen int           `validate:"gte=1"`

	Norm float64 `validate:"gt=0"`

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string `validate:"required"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	LogFormat       string `validate:"oneof=json text"`
	ShutdownTimeout time.Duration
}

var validate = validator.New()

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	years, err := parseYears(sharedcfg.EnvOrDefault("ARCHIVE_YEARS", "2014,2019,2024"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_YEARS: %w", err)
	}
	ids, err := parseYearMap(sharedcfg.EnvOrDefault("GIOS_ARCHIVE_IDS", "2014:302,2019:322,2024:582"))
	if err != nil {
		return nil, fmt.Errorf("invalid GIOS_ARCHIVE_IDS: %w", err)
	}
	files, err := parseYearMap(sharedcfg.EnvOrDefault("GIOS_ARCHIVE_FILES",
		"2014:2014_PM2.5_1g.xlsx,2019:2019_PM25_1g.xlsx,2024:2024_PM25_1g.xlsx"))
	if err != nil {
		return nil, fmt.Errorf("invalid GIOS_ARCHIVE_FILES: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GIOS_FETCH_TIMEOUT", "60s"))
	if err != nil {
		return nil, errors.New("invalid GIOS_FETCH_TIMEOUT")
	}
	retries, err := strconv.Atoi(sharedcfg.EnvOrDefault("GIOS_FETCH_RETRIES", "2"))
	if err != nil {
		return nil, errors.New("invalid GIOS_FETCH_RETRIES")
	}
	cacheLen, err := strconv.Atoi(sharedcfg.EnvOrDefault("ARCHIVE_CACHE_SIZE", "8"))
	if err != nil {
		return nil, errors.New("invalid ARCHIVE_CACHE_SIZE")
	}
	norm, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("PM25_NORM", "15"), 64)
	if err != nil {
		return nil, errors.New("invalid PM25_NORM")
	}
	kafkaEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false"))
	if err != nil {
		return nil, errors.New("invalid KAFKA_ENABLED")
	}

	cfg := &Config{
		Years:           years,
		ArchiveBaseURL:  sharedcfg.EnvOrDefault("GIOS_ARCHIVE_URL", "https://powietrze.gios.gov.pl/pjp/archives/downloadFile/"),
		ArchiveIDs:      ids,
		ArchiveFiles:    files,
		ArchiveDir:      sharedcfg.EnvOrDefault("GIOS_ARCHIVE_DIR", ""),
		MetadataPath:    sharedcfg.EnvOrDefault("GIOS_METADATA_PATH", "metadane.xlsx"),
		FetchTimeout:    fetchTimeout,
		FetchRetries:    retries,
		ArchiveCacheLen: cacheLen,
		Norm:            norm,
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "pm25-exceedances"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}
	for _, y := range cfg.Years {
		if _, ok := cfg.ArchiveIDs[y]; !ok {
			return nil, fmt.Errorf("year %d has no entry in GIOS_ARCHIVE_IDS", y)
		}
	}

	return cfg, nil
}

// parseYears reads a comma-separated year list.
func parseYears(value string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a year", part)
		}
		years = append(years, y)
	}
	return years, nil
}

// parseYearMap reads "year:value" pairs separated by commas.
func parseYearMap(value string) (map[int]string, error) {
	out := make(map[int]string)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%q is not year:value", part)
		}
		y, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("%q is not a year", k)
		}
		out[y] = strings.TrimSpace(v)
	}
	return out, nil
}
