package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// FileName is the config file name searched in ., $HOME and $HOME/.config/joinsql
const FileName = ".joinsql"

var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	MappingPath    string
	Dialect        string
	DatabaseSchema string
	DatabaseURL    string
	MaxFeatures    int
	Debug          bool
}

func newViper() (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "joinsql"))

	v.SetEnvPrefix("JOINSQL")
	v.AutomaticEnv()

	v.SetDefault("mapping_path", "mapping.yaml")
	v.SetDefault("dialect", "postgres")
	v.SetDefault("database_schema", "")
	v.SetDefault("max_features", 1000000)
	v.SetDefault("debug", false)
	return v, nil
}

// LoadConfig loads configuration from the config file, .env files and the environment
func LoadConfig() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// a missing config file leaves the defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := loadEnv(".env", false); err != nil {
		return nil, err
	}
	// .env.local wins over .env
	if err := loadEnv(".env.local", true); err != nil {
		return nil, err
	}

	return &Config{
		MappingPath:    v.GetString("mapping_path"),
		Dialect:        v.GetString("dialect"),
		DatabaseSchema: v.GetString("database_schema"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MaxFeatures:    v.GetInt("max_features"),
		Debug:          v.GetBool("debug"),
	}, nil
}

// loadEnv sets the variables of a dotenv file on AppFs. Variables already
// in the environment are kept unless overload is set.
func loadEnv(path string, overload bool) error {
	f, err := AppFs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	for key, value := range vars {
		if _, set := os.LookupEnv(key); set && !overload {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// SaveConfig writes cfg to dir/.joinsql.yaml and returns the file path
func SaveConfig(cfg *Config, dir string) (string, error) {
	v, err := newViper()
	if err != nil {
		return "", err
	}
	v.Set("mapping_path", cfg.MappingPath)
	v.Set("dialect", cfg.Dialect)
	v.Set("database_schema", cfg.DatabaseSchema)
	v.Set("max_features", cfg.MaxFeatures)
	v.Set("debug", cfg.Debug)

	if err := AppFs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	configFile := filepath.Join(dir, FileName+".yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return "", err
	}
	return configFile, nil
}

// UserConfigDir returns $HOME/.config/joinsql
func UserConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "joinsql"), nil
}
