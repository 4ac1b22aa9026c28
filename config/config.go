// Package config loads the project YAML configuration and overlays
// infrastructure endpoints from the environment. A missing or malformed
// configuration file is fatal before the pipeline runs.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// BaseFile is the YAML file expected under <project root>/configs/.
const BaseFile = "base.yaml"

type Config struct {
	Env       string
	Project   ProjectConfig       `yaml:"project"`
	Data      DataConfig          `yaml:"data"`
	Synthetic SynthConfig         `yaml:"synthetic"`
	Output    OutputConfig        `yaml:"output"`
	Database  DatabaseConfig      `yaml:"-"`
	Kafka     KafkaConfig         `yaml:"-"`
	Observ    ObservabilityConfig `yaml:"-"`
}

type ProjectConfig struct {
	Name string `yaml:"name"`
}

type DataConfig struct {
	// Source selects dataset acquisition: "hub" or "synthetic".
	Source      string `yaml:"source"`
	RawDataPath string `yaml:"raw_data_path"`
	DatasetURL  string `yaml:"dataset_url"`
}

type SynthConfig struct {
	Seed      int64  `yaml:"seed"`
	Customers int    `yaml:"customers"`
	Sellers   int    `yaml:"sellers"`
	Products  int    `yaml:"products"`
	Orders    int    `yaml:"orders"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Workbook string `yaml:"workbook"`
}

type DatabaseConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type ObservabilityConfig struct {
	JaegerEndpoint  string
	PushgatewayAddr string
	PushJob         string
}

// Load locates the project root by walking up from the working
// directory, reads configs/base.yaml and applies environment overrides.
func Load(projectName string) (*Config, error) {
	_ = godotenv.Load()

	root, err := findRoot(projectName)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(root, "configs", BaseFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Env = getEnv("ENV", "development")
	cfg.Database = DatabaseConfig{
		URL: getEnv("DATABASE_URL", ""),
	}
	cfg.Kafka = KafkaConfig{
		Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
		Topic:   getEnv("KAFKA_TOPIC_ETL_EVENTS", "etl-events"),
	}
	cfg.Observ = ObservabilityConfig{
		JaegerEndpoint:  getEnv("JAEGER_ENDPOINT", ""),
		PushgatewayAddr: getEnv("PUSHGATEWAY_ADDR", ""),
		PushJob:         getEnv("PUSH_JOB", "commerce-etl"),
	}

	if cfg.Data.RawDataPath == "" {
		return nil, fmt.Errorf("config %s: data.raw_data_path is required", path)
	}
	if !filepath.IsAbs(cfg.Data.RawDataPath) {
		cfg.Data.RawDataPath = filepath.Join(root, cfg.Data.RawDataPath)
	}
	if cfg.Output.Dir != "" && !filepath.IsAbs(cfg.Output.Dir) {
		cfg.Output.Dir = filepath.Join(root, cfg.Output.Dir)
	}
	if cfg.Output.Workbook != "" && !filepath.IsAbs(cfg.Output.Workbook) {
		cfg.Output.Workbook = filepath.Join(root, cfg.Output.Workbook)
	}

	log.Printf("Config loaded: env=%s, source=%s, raw=%s",
		cfg.Env, cfg.Data.Source, cfg.Data.RawDataPath)
	return cfg, nil
}

// findRoot walks up from the working directory until it hits a
// directory named after the project or one containing configs/.
func findRoot(projectName string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if filepath.Base(dir) == projectName {
			return dir, nil
		}
		if info, err := os.Stat(filepath.Join(dir, "configs")); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root %q from working directory", projectName)
		}
		dir = parent
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
