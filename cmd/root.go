package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"parking-cli/api"
	"parking-cli/logger"
	"parking-cli/metrics"
	"parking-cli/storage"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	outputJSON    bool
	outputCompact bool
	cfg           Config
	appLog        *logger.Logger
	collector     *metrics.Metrics
	client        *api.Client
)

type Config struct {
	API      APIConfig      `toml:"api"`
	Logs     LogsConfig     `toml:"logs"`
	Facility FacilityConfig `toml:"facility"`
	Server   ServerConfig   `toml:"server"`
}

type APIConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type FacilityConfig struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Address     string `toml:"address"`
	Phone       string `toml:"phone"`
	MapURL      string `toml:"map_url"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() Config {
	return Config{
		API:  APIConfig{TimeoutSeconds: 15},
		Logs: LogsConfig{Level: "warn"},
		Facility: FacilityConfig{
			Name:        "Parking Courier",
			Description: "Book a spot online and enjoy your stay in Annecy: check availability, reserve a place or release it.",
			Address:     "Rue Paul Cézanne, 74000 Annecy",
			Phone:       "+33 4 50 33 87 99",
			MapURL:      "https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d2334.577383041891!2d6.120652889300415!3d45.90539080842681!2m3!1f0!2f0!3f0!3m2!1i1024!2i768!4f13.1!3m3!1m2!1s0x478b8ff7b5f3afc5%3A0x14ca3981f7c21ca!2sParking%20Courier!5e0!3m2!1sen!2sfr!4v1709826774485!5m2!1sen!2sfr",
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

var rootCmd = &cobra.Command{
	Use:   "parking",
	Short: "Parking Courier spots and reservations",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON && outputCompact {
			return fmt.Errorf("choose either --json or --compact")
		}
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		appLog, err = logger.New(cfg.Logs.File, cfg.Logs.Level)
		if err != nil {
			return err
		}
		collector = metrics.New("parking")
		client = api.NewClient(cfg.API.URL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, appLog, collector)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appLog != nil {
			return appLog.Close()
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	rootCmd.AddCommand(spotsCmd())
	rootCmd.AddCommand(floorsCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(reservationCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(favoritesCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(infoCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVar(&outputCompact, "compact", false, "Output compact text")
}

// loadConfig layers defaults, config.toml, .env and the environment, in
// that order.
func loadConfig() (Config, error) {
	conf := defaultConfig()

	path, err := storage.ConfigPath()
	if err != nil {
		return Config{}, err
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return Config{}, fmt.Errorf("config path is a directory: %s", path)
	case err == nil:
		if _, err := toml.DecodeFile(path, &conf); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&conf)
	return conf, nil
}

func applyEnv(conf *Config) {
	if v := os.Getenv("PARKING_API_URL"); v != "" {
		conf.API.URL = v
	}
	if v := os.Getenv("PARKING_API_TIMEOUT"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			conf.API.TimeoutSeconds = seconds
		}
	}
	if v := os.Getenv("PARKING_LOG_LEVEL"); v != "" {
		conf.Logs.Level = v
	}
	if v := os.Getenv("PARKING_LOG_FILE"); v != "" {
		conf.Logs.File = v
	}
	if v := os.Getenv("PARKING_SERVER_ADDR"); v != "" {
		conf.Server.Addr = v
	}
}
